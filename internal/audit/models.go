package audit

import "time"

// Event is emitted from auth logic to capture security-relevant actions.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	Email     string    `json:"email,omitempty"`
	Device    string    `json:"device,omitempty"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
}

// Action names the auth lifecycle step an event records.
type Action string

const (
	ActionCodeSent        Action = "registration_code_sent"
	ActionUserRegistered  Action = "user_registered"
	ActionLoginSucceeded  Action = "login_succeeded"
	ActionLoginFailed     Action = "login_failed"
	ActionTokensRefreshed Action = "tokens_refreshed"
)

// Outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeDenied = "denied"
)
