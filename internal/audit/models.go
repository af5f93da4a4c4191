package audit

import "time"

// EventCategory classifies audit events by their primary purpose so sinks can
// route them differently.
type EventCategory string

const (
	CategoryCompliance EventCategory = "compliance"
	CategorySecurity   EventCategory = "security"
	CategoryOperations EventCategory = "operations"
)

// Action names a registry mutation or authentication attempt.
type Action string

const (
	ActionUserCreated Action = "user_created"
	ActionUserUpdated Action = "user_updated"
	ActionUserDeleted Action = "user_deleted"

	ActionSurveyCreated        Action = "survey_created"
	ActionSurveyWinnerAssigned Action = "survey_winner_assigned"
	ActionSurveyUpdated        Action = "survey_updated"
	ActionSurveyDeleted        Action = "survey_deleted"

	ActionCandidateCreated Action = "candidate_created"
	ActionVoteCast         Action = "vote_cast"
	ActionAdminCreated     Action = "admin_created"

	ActionAuthSucceeded Action = "auth_succeeded"
	ActionAuthFailed    Action = "auth_failed"
)

var actionCategories = map[Action]EventCategory{
	ActionUserCreated:   CategoryCompliance,
	ActionUserDeleted:   CategoryCompliance,
	ActionVoteCast:      CategoryCompliance,
	ActionSurveyDeleted: CategoryCompliance,

	ActionAuthFailed:   CategorySecurity,
	ActionAdminCreated: CategorySecurity,
}

// Category returns the EventCategory for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from the registries after a committed mutation or an
// authentication attempt. Keep it transport-agnostic so sinks can fan out.
type Event struct {
	Category   EventCategory `json:"category"`
	Timestamp  time.Time     `json:"timestamp"`
	Action     Action        `json:"action"`
	Collection string        `json:"collection"`
	Subject    string        `json:"subject"`
	// ActorID is the authenticated principal that triggered the event, if any.
	ActorID   string `json:"actor_id,omitempty"`
	Role      string `json:"role,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
}
