// Server entrypoint: wires configuration, storage, the completion provider
// and every feature service, then runs the HTTP server until interrupted.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"lingua/internal/admin"
	"lingua/internal/analysis"
	"lingua/internal/audit"
	"lingua/internal/auth"
	"lingua/internal/chat"
	httpapi "lingua/internal/http"
	"lingua/internal/jwttoken"
	"lingua/internal/learning"
	"lingua/internal/llm"
	"lingua/internal/platform/config"
	"lingua/internal/platform/httpserver"
	"lingua/internal/platform/logger"
	"lingua/internal/platform/metrics"
	"lingua/internal/platform/mongo"
	"lingua/internal/platform/redis"
	"lingua/internal/tokenusage"
	"lingua/internal/user"
	"lingua/internal/ws"
)

const (
	loginMaxAttempts = 5
	loginWindow      = 15 * time.Minute
	auditBuffer      = 256
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Error("connect mongo", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Close(shutdownCtx)
	}()
	if err := mongoClient.EnsureIndexes(ctx); err != nil {
		log.Error("ensure indexes", "error", err.Error())
		os.Exit(1)
	}
	db := mongoClient.Database()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	provider, err := llm.NewOpenAI(cfg.OpenAI.APIKey, llm.WithModel(cfg.OpenAI.Model))
	if err != nil {
		log.Error("init llm provider", "error", err.Error())
		os.Exit(1)
	}

	m := metrics.New()
	tokens := jwttoken.NewService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	publisher := audit.NewPublisher(auditBuffer, log)
	group, groupCtx := errgroup.WithContext(ctx)
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("init kafka sink", "error", err.Error())
			os.Exit(1)
		}
		defer sink.Close()
		worker := audit.NewWorker(sink, publisher, log)
		group.Go(func() error { return worker.Run(groupCtx) })
	}

	userStore := user.NewMongoStore(db)
	userSvc := user.NewService(userStore, log,
		user.WithAudit(publisher), user.WithMetrics(m))

	authOpts := []auth.Option{auth.WithAudit(publisher)}
	if redisClient != nil {
		authOpts = append(authOpts,
			auth.WithLimiter(auth.NewLoginLimiter(redisClient.Client, loginMaxAttempts, loginWindow)))
	}
	authSvc := auth.NewService(userStore, tokens, cfg.JWT.ExpiresIn, log, authOpts...)

	usageSvc := tokenusage.NewService(tokenusage.NewMongoStore(db), m, log)

	sessionStore := chat.NewMongoSessionStore(db)
	messageStore := chat.NewMongoMessageStore(db)
	chatSvc := chat.NewService(sessionStore, messageStore, provider, usageSvc, log,
		chat.WithAudit(publisher), chat.WithMetrics(m))

	languageStore := learning.NewMongoLanguageStore(db)
	learningSvc := learning.NewService(learning.Stores{
		Languages: languageStore,
		Lessons:   learning.NewMongoLessonStore(db),
		Quizzes:   learning.NewMongoQuizStore(db),
		Progress:  learning.NewMongoProgressStore(db),
		Activity:  learning.NewMongoActivityStore(db),
		Scenarios: learning.NewMongoScenarioStore(db),
	}, provider, usageSvc, log,
		learning.WithAudit(publisher), learning.WithMetrics(m))

	analysisSvc := analysis.NewService(analysis.Stores{
		Feedback:    analysis.NewMongoFeedbackStore(db),
		Meetings:    analysis.NewMongoMeetingStore(db),
		Suggestions: analysis.NewMongoSuggestionStore(db),
	}, sessionStore, messageStore, learningSvc, provider, usageSvc, log,
		analysis.WithAudit(publisher), analysis.WithMetrics(m),
		analysis.WithActivityLogger(learningSvc))

	adminSvc := admin.NewService(userStore, sessionStore, tokenusage.NewMongoStore(db), languageStore, log,
		admin.WithAudit(publisher))

	health := []httpapi.HealthCheck{
		{Name: "mongo", Check: mongoClient.Health},
	}
	if redisClient != nil {
		health = append(health, httpapi.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	router := httpapi.New(httpapi.Deps{
		Logger:   log,
		Metrics:  m,
		Auth:     auth.NewHandler(authSvc, log),
		Users:    user.NewHandler(userSvc, log, tokens),
		Chat:     chat.NewHandler(chatSvc, log, tokens),
		Tokens:   tokenusage.NewHandler(usageSvc, log, tokens),
		Learning: learning.NewHandler(learningSvc, log, tokens),
		Analysis: analysis.NewHandler(analysisSvc, log, tokens),
		Admin:    admin.NewHandler(adminSvc, log, tokens),
		WS: ws.NewHandler(chatSvc, analysisSvc, learningSvc, ws.NewHub(), tokens, log,
			ws.WithMetrics(m)),
		Health: health,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	group.Go(func() error {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}
