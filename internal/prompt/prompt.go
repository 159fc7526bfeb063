// Package prompt holds the prompt templates sent to the completion provider.
// Templates are plain fmt strings so services stay free of prompt text.
package prompt

import "fmt"

const conversationAnalysisTemplate = `You are an expert %[1]s language teacher. Analyze ONLY the user's responses in the transcript below and provide what the ideal responses should have been.

## CONVERSATION TRANSCRIPT:
%[2]s

For every user response: quote what the assistant said, quote the user's actual response, give the ideal %[1]s response, 2-3 alternatives, and explain why the ideal is better. Rate each response on appropriateness, grammar, vocabulary and fluency.

Respond ONLY with JSON in this format:
{
  "conversation_exchanges": [
    {
      "ai_message": "what the assistant said",
      "user_response": "the user's exact response",
      "ideal_response": "what the perfect response should have been",
      "alternative_responses": ["alt 1", "alt 2"],
      "why_ideal_is_better": "explanation",
      "key_improvements": ["improvement 1"]
    }
  ],
  "response_improvements_summary": [
    {
      "user_response": "what the user said",
      "ideal_response": "what they should have said",
      "improvement_type": "grammar/vocabulary/fluency/appropriateness",
      "specific_issue": "what was wrong",
      "how_to_improve": "guidance"
    }
  ],
  "vocabulary_for_ideal_responses": {
    "key_words_missing": [
      {"word": "...", "meaning": "...", "usage": "...", "example_in_context": "..."}
    ],
    "better_word_choices": [
      {"user_said": "...", "ideal_choice": "...", "why_better": "..."}
    ]
  },
  "user_strengths": ["things the user did well"],
  "response_improvement_suggestions": ["suggestions for next time"],
  "word_bank": {
    "essential_corrections": ["words that must be learned"],
    "recommended_vocabulary": ["words that would enhance communication"],
    "advanced_options": ["words for sophisticated expression"]
  },
  "overall_score": 0,
  "fluency_score": 0,
  "grammar_score": 0,
  "vocabulary_score": 0,
  "pronunciation_score": 0
}

Scores are 0-100 integers. Quote exact user sentences. Focus on realistic improvements the user can apply.`

// ConversationAnalysis builds the structured review prompt for a practice
// conversation transcript.
func ConversationAnalysis(languageName, transcript string) string {
	return fmt.Sprintf(conversationAnalysisTemplate, languageName, transcript)
}

const meetingAnalysisTemplate = `You are an expert communication analyst specializing in workplace meeting effectiveness and language assessment. The meeting transcription below is in %[1]s. Analyze the participation of the individual named in the user context.

Cover: grammar and language accuracy (identify every error with a correction, category and severity), fluency and coherence, vocabulary range and professional register, meeting participation effectiveness, organizational skills and interpersonal communication.

Respond ONLY with JSON in this format:
{
  "grammar_issues": [
    {"error": "exact text", "correction": "corrected version", "category": "grammar category", "severity": "minor/moderate/major", "explanation": "...", "context": "..."}
  ],
  "fluency_analysis": {"overall_rating": 0, "coherence_score": 0, "flow_assessment": "...", "hesitation_patterns": "..."},
  "vocabulary_evaluation": {"range_level": "basic/intermediate/advanced/expert", "professional_terminology": "...", "precision_score": 0, "vocabulary_gaps": ["..."]},
  "meeting_participation": {"contribution_quality": 0, "engagement_level": "...", "question_quality": "...", "meeting_etiquette": "..."},
  "communication_effectiveness": {"clarity_score": 0, "completeness": "...", "professional_impact": "..."},
  "organizational_skills": {"structure_score": 0, "prioritization": "...", "time_management": "..."},
  "detailed_feedback": ["specific strengths and areas for improvement with examples"],
  "improvement_roadmap": {
    "immediate_priorities": ["top areas for quick improvement"],
    "weekly_practice_goals": ["objectives for next meeting"],
    "long_term_growth": ["advanced skills"]
  },
  "scores": {
    "overall_communication": 0,
    "grammar_accuracy": 0,
    "fluency": 0,
    "vocabulary": 0,
    "meeting_effectiveness": 0,
    "professional_presence": 0
  },
  "proficiency_assessment": {"current_level": "CEFR A1-C2", "strengths": ["..."], "critical_development_areas": ["..."]}
}

Scores are 0-100 integers. Be specific, constructive and comprehensive.

### MEETING COMMUNICATION TO ANALYZE:
%[2]s

### User added context (if any):
%[3]s`

// MeetingAnalysis builds the meeting transcription review prompt. contextInfo
// carries the participant name and anything else the caller supplied.
func MeetingAnalysis(languageName, transcript, contextInfo string) string {
	return fmt.Sprintf(meetingAnalysisTemplate, languageName, transcript, contextInfo)
}

const responseSuggestionsTemplate = `You are an expert communication coach specializing in professional meeting communication.

## MEETING CONTEXT
Language: %[1]s
Participant: %[2]s
Meeting Name: %[3]s
Meeting Transcription:
%[4]s

Additional Context:
%[5]s

Extract 5-8 key moments where %[2]s responded or participated, identify improvement opportunities, and generate better response alternatives with improved grammar, vocabulary, structure and confidence. Keep the suggestions natural and authentic to the person's style.

Respond ONLY with JSON in this format:
{
  "original_responses": [
    {"context": "what %[2]s was responding to", "original_response": "their actual response", "timing": "when in the meeting"}
  ],
  "suggested_responses": [
    {
      "context": "same context",
      "improved_response": "the suggested better response",
      "improvements": ["Grammar: ...", "Vocabulary: ...", "Structure: ...", "Confidence: ..."],
      "explanation": "why this response is better"
    }
  ]
}`

// ResponseSuggestions builds the prompt that turns a stored meeting analysis
// into improved response alternatives for one participant.
func ResponseSuggestions(languageName, userName, meetingName, transcription, customContext string) string {
	return fmt.Sprintf(responseSuggestionsTemplate, languageName, userName, meetingName, transcription, customContext)
}

const customScenarioTemplate = `You are a language-learning scenario creator. Based on the user's request, generate a practical and engaging scenario in %[1]s to help the user practice conversation skills.

User Request: %[2]s

Your output must include:
1. A clear and engaging scenario title (max 50 characters)
2. A concise description of the situation (max 250 characters)
3. The AI's role, including the role itself, the inferred tone (casual or formal), and the inferred difficulty level (beginner, intermediate, or advanced), combined into a single string

Respond only in this JSON format:
{
    "title": "Scenario title",
    "description": "Brief scene description",
    "role": "AI role, tone, level"
}`

// CustomScenario builds the generation prompt for a user-requested practice
// scenario.
func CustomScenario(language, description string) string {
	return fmt.Sprintf(customScenarioTemplate, language, description)
}

const scenarioSystemTemplate = `You are taking on the role of %[1]s in a %[2]s conversation practice. The topic is: %[3]s.

Your goal is to simulate a natural, human-like conversation. Speak as a real person would: vary your sentence length, use natural pauses, and react to what the user says. Sometimes answer briefly, sometimes expand, just like people do.

Ask follow-up questions. Make observations. Respond with a mix of clarity and personality. Avoid sounding repetitive or scripted.

You are here to help the user get comfortable using %[2]s in realistic situations. Keep things practical, friendly, and dynamic. Stay in character and keep the flow going.

Don't over-explain. Don't dominate the conversation. Let the user lead when it makes sense, and gently guide them when they need help.

Your response should not be too long. Try to keep it concise and engaging.`

// ScenarioSystem builds the system prompt injected at the start of a
// scenario-driven chat.
func ScenarioSystem(role, language, summary string) string {
	return fmt.Sprintf(scenarioSystemTemplate, role, language, summary)
}
