package prompt

// Scenario is the role context attached to a practice conversation.
type Scenario struct {
	Title   string
	Role    string
	Summary string
}

// ScenarioTypes accepted on conversation connects.
const (
	ScenarioTypePredefined = "predefined"
	ScenarioTypeMeeting    = "meeting"
	ScenarioTypeCustom     = "custom"
)

var predefinedScenarios = map[string]Scenario{
	"job_interview": {
		Title:   "Job Interview",
		Role:    "interviewer",
		Summary: "conducting a job interview",
	},
	"restaurant": {
		Title:   "Restaurant Conversation",
		Role:    "restaurant server",
		Summary: "helping customer with menu and orders",
	},
	"business_meeting": {
		Title:   "Business Meeting",
		Role:    "business colleague",
		Summary: "discussing project updates and collaboration",
	},
	"travel": {
		Title:   "Travel & Tourism",
		Role:    "travel assistant",
		Summary: "helping traveler with information and bookings",
	},
	"shopping": {
		Title:   "Shopping",
		Role:    "shop assistant",
		Summary: "helping customer find and purchase products",
	},
	"doctor_visit": {
		Title:   "Doctor Visit",
		Role:    "doctor",
		Summary: "medical consultation with patient",
	},
}

// PredefinedScenario looks up one of the built-in practice scenarios by ID.
func PredefinedScenario(id string) (Scenario, bool) {
	s, ok := predefinedScenarios[id]
	return s, ok
}
