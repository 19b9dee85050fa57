package domain

// TurnEvent is published after every completed assistant turn for
// downstream analytics consumers.
type TurnEvent struct {
	SessionID  string     `json:"session_id"`
	Branch     TurnBranch `json:"branch"`
	Picks      int        `json:"picks"`
	DurationMS float64    `json:"duration_ms"`
}
