// Package ws carries the realtime conversation endpoint. A client connects
// with its access token, exchanges voice transcript turns with the
// completion provider, and can request a feedback analysis mid-conversation
// or on hangup.
package ws

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"lingua/internal/analysis"
	"lingua/internal/chat"
	"lingua/internal/learning"
	"lingua/internal/platform/metrics"
	"lingua/internal/platform/middleware"
	"lingua/internal/prompt"
)

const (
	readTimeout       = 5 * time.Minute
	keepaliveInterval = 45 * time.Second
	chatTemperature   = 0.8
	transcriptionClip = 200
)

// envelope is the inbound wire frame. Outbound frames are loose maps keyed
// by "type".
type envelope struct {
	Type            string `json:"type"`
	Text            string `json:"text,omitempty"`
	ForceReanalysis bool   `json:"force_reanalysis,omitempty"`
}

type frame map[string]any

// Handler upgrades and drives conversation sockets.
type Handler struct {
	chat         *chat.Service
	analysis     *analysis.Service
	learning     *learning.Service
	hub          *Hub
	jwtValidator middleware.JWTValidator
	metrics      *metrics.Metrics
	logger       *slog.Logger
	upgrader     websocket.Upgrader
}

// Option configures optional handler collaborators.
type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func NewHandler(chatSvc *chat.Service, analysisSvc *analysis.Service, learningSvc *learning.Service, hub *Hub, jwtValidator middleware.JWTValidator, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		chat:         chatSvc,
		analysis:     analysisSvc,
		learning:     learningSvc,
		hub:          hub,
		jwtValidator: jwtValidator,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from a separate frontend origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/ws/conversation", h.handleConversation)
	r.Get("/ws/echo", h.handleEcho)
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	token := query.Get("token")
	language := query.Get("language")
	if language == "" {
		language = "en"
	}
	sessionID := query.Get("session_id")
	scenarioID := query.Get("scenario_id")
	scenarioType := query.Get("scenario_type")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err.Error())
		return
	}
	cl := &client{conn: conn}

	claims, err := h.jwtValidator.ValidateToken(token)
	if token == "" || err != nil {
		cl.close(websocket.ClosePolicyViolation, "authentication failed")
		return
	}
	userID := claims.UserID

	h.hub.add(userID, cl)
	h.metrics.WSConnectionOpened()
	defer func() {
		h.hub.remove(userID, cl)
		h.metrics.WSConnectionClosed()
		conn.Close()
	}()

	ctx := r.Context()

	var sess *chat.Session
	if sessionID != "" {
		sess, err = h.chat.GetSession(ctx, sessionID, userID)
		if err != nil {
			cl.send(frame{"type": "error", "message": "session not found"})
			cl.close(websocket.ClosePolicyViolation, "session not found")
			return
		}
		cl.send(frame{
			"type":       "session_resumed",
			"session_id": sess.ID,
			"message":    "Resuming previous conversation",
		})
	} else {
		meta := chat.SessionMetadata{Language: language}
		title := "Voice Conversation - " + strings.ToUpper(language)
		if sc := h.resolveScenario(ctx, userID, scenarioID, scenarioType); sc != nil {
			meta.Scenario = sc
			title += " - " + sc.Title
		}
		sess, err = h.chat.CreateSession(ctx, userID, chat.CreateSessionRequest{Title: title, Metadata: meta})
		if err != nil {
			h.logger.WarnContext(ctx, "create conversation session", "user_id", userID, "error", err.Error())
			cl.close(websocket.CloseInternalServerErr, "could not create session")
			return
		}
		cl.send(frame{"type": "session_created", "session_id": sess.ID})
	}

	cl.send(frame{"type": "ready", "message": "Connected. Start speaking..."})

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		t := time.NewTicker(keepaliveInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if cl.send(frame{"type": "keepalive", "message": "Connection is alive"}) != nil {
					return
				}
			}
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				h.logger.InfoContext(ctx, "conversation socket timed out", "session_id", sess.ID)
				return
			}
			if _, ok := err.(*websocket.CloseError); !ok {
				// Malformed JSON keeps the connection alive; a transport
				// error does not.
				if cl.send(frame{"type": "error", "message": "invalid JSON format"}) == nil {
					continue
				}
			}
			return
		}

		switch env.Type {
		case "voice_input":
			h.handleVoiceInput(ctx, cl, userID, sess.ID, env.Text)

		case "ping":
			cl.send(frame{"type": "pong", "message": "pong"})

		case "analyze_conversation":
			h.sendAnalysis(ctx, cl, userID, sess.ID, language, env.ForceReanalysis)

		case "end_conversation":
			h.sendAnalysis(ctx, cl, userID, sess.ID, language, true)
			h.logConversationActivity(ctx, userID, sess.ID, language)
			cl.close(websocket.CloseNormalClosure, "")
			return

		default:
			cl.send(frame{"type": "error", "message": "unknown message type: " + env.Type})
		}
	}
}

func (h *Handler) handleVoiceInput(ctx context.Context, cl *client, userID, sessionID, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	result, err := h.chat.SendMessage(ctx, userID, chat.SendRequest{
		Message:     text,
		SessionID:   sessionID,
		Temperature: chatTemperature,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "conversation exchange failed",
			"session_id", sessionID, "error", err.Error())
		cl.send(frame{"type": "error", "message": "error processing your message"})
		return
	}
	cl.send(frame{
		"type":  "assistant_message",
		"text":  result.Response,
		"usage": result.Usage,
	})
}

func (h *Handler) sendAnalysis(ctx context.Context, cl *client, userID, sessionID, language string, force bool) {
	feedback, err := h.analysis.AnalyzeConversation(ctx, userID, analysis.ConversationAnalysisRequest{
		SessionID:       sessionID,
		Language:        language,
		ForceReanalysis: force,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "conversation analysis failed",
			"session_id", sessionID, "error", err.Error())
		cl.send(frame{"type": "error", "message": "failed to analyze conversation"})
		return
	}
	cl.send(frame{
		"type":        "analysis",
		"feedback_id": feedback.ID,
		"analysis":    feedback.Analysis,
		"strengths":   feedback.Strengths,
		"suggestions": feedback.Suggestions,
		"scores": map[string]int{
			"overall":       feedback.OverallScore,
			"fluency":       feedback.FluencyScore,
			"grammar":       feedback.GrammarScore,
			"vocabulary":    feedback.VocabularyScore,
			"pronunciation": feedback.PronunciationScore,
		},
	})
}

func (h *Handler) logConversationActivity(ctx context.Context, userID, sessionID, language string) {
	messages, err := h.chat.ListMessages(ctx, sessionID, userID, 0, 0)
	if err != nil || len(messages) == 0 {
		return
	}
	duration := len(messages) / 2
	if duration < 1 {
		duration = 1
	}
	entry := learning.ActivityEntry{
		UserID:       userID,
		Type:         learning.ActivityConversation,
		ActivityID:   sessionID,
		Duration:     duration,
		LanguageCode: language,
		Completed:    true,
	}
	if err := h.learning.LogActivity(ctx, entry); err != nil {
		h.logger.WarnContext(ctx, "log conversation activity",
			"session_id", sessionID, "error", err.Error())
	}
}

// resolveScenario maps the connect parameters onto stored scenario metadata.
// Meeting and custom IDs arrive prefixed by the client ("meeting_<id>",
// "custom_<id>").
func (h *Handler) resolveScenario(ctx context.Context, userID, scenarioID, scenarioType string) *chat.ScenarioMeta {
	if scenarioID == "" || scenarioType == "" {
		return nil
	}
	switch scenarioType {
	case prompt.ScenarioTypePredefined:
		sc, ok := prompt.PredefinedScenario(scenarioID)
		if !ok {
			return nil
		}
		return &chat.ScenarioMeta{
			ID:          scenarioID,
			Type:        scenarioType,
			Title:       sc.Title,
			Description: sc.Summary,
			Role:        sc.Role,
		}

	case prompt.ScenarioTypeMeeting:
		id := strings.TrimPrefix(scenarioID, "meeting_")
		m, err := h.analysis.MeetingAnalysisByID(ctx, id, userID)
		if err != nil {
			h.logger.WarnContext(ctx, "resolve meeting scenario",
				"scenario_id", scenarioID, "error", err.Error())
			return nil
		}
		summary := "meeting about " + m.MeetingName
		if len(m.Transcription) > transcriptionClip {
			summary += " - topic: " + m.Transcription[:transcriptionClip] + "..."
		}
		return &chat.ScenarioMeta{
			ID:          scenarioID,
			Type:        scenarioType,
			Title:       m.MeetingName,
			Description: summary,
			Role:        "meeting participant",
		}

	case prompt.ScenarioTypeCustom:
		id := strings.TrimPrefix(scenarioID, "custom_")
		sc, err := h.learning.ScenarioByID(ctx, id, userID)
		if err != nil {
			return &chat.ScenarioMeta{
				ID:          scenarioID,
				Type:        scenarioType,
				Title:       "Custom Scenario",
				Description: "custom practice scenario",
				Role:        "conversation partner",
			}
		}
		return &chat.ScenarioMeta{
			ID:          scenarioID,
			Type:        scenarioType,
			Title:       sc.Title,
			Description: sc.Description,
			Role:        sc.Role,
		}
	}
	return nil
}

// handleEcho is a connectivity probe: every frame comes straight back.
func (h *Handler) handleEcho(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(messageType, payload); err != nil {
			return
		}
	}
}
