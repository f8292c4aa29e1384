package dto

type HeartbeatRequest struct {
	Serial string `json:"serial"`
}

type CompleteCommandRequest struct {
	CommandID uint   `json:"command_id"`
	Status    string `json:"status"` // success | failed | dead_letter
	Response  string `json:"response,omitempty"`
}

type RetryCommandRequest struct {
	CommandID uint `json:"command_id"`
}

type CommandView struct {
	ID         uint   `json:"id"`
	Payload    string `json:"payload"`
	Sequence   int    `json:"sequence"`
	RetryCount int    `json:"retry_count"`
	CreatedAt  int64  `json:"created_at"`
}
