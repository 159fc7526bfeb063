package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationAnalysisIncludesLanguageAndTranscript(t *testing.T) {
	p := ConversationAnalysis("Spanish", "USER: hola\nASSISTANT: hola!")

	assert.Contains(t, p, "expert Spanish language teacher")
	assert.Contains(t, p, "USER: hola")
	assert.Contains(t, p, `"overall_score"`)
}

func TestResponseSuggestionsIncludesParticipant(t *testing.T) {
	p := ResponseSuggestions("English", "Maria", "Weekly Sync", "transcript text", "")

	assert.Contains(t, p, "Participant: Maria")
	assert.Contains(t, p, "Weekly Sync")
	assert.Contains(t, p, "transcript text")
}

func TestScenarioSystemStaysInCharacter(t *testing.T) {
	p := ScenarioSystem("interviewer", "German", "conducting a job interview")

	assert.Contains(t, p, "role of interviewer")
	assert.Contains(t, p, "German conversation practice")
	assert.Contains(t, p, "conducting a job interview")
}

func TestPredefinedScenario(t *testing.T) {
	s, ok := PredefinedScenario("restaurant")
	assert.True(t, ok)
	assert.Equal(t, "restaurant server", s.Role)

	_, ok = PredefinedScenario("space_station")
	assert.False(t, ok)
}
