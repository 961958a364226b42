package dto

type AskRequest struct {
	Question  string  `json:"question"`
	SessionID *string `json:"sessionId"`
	UserID    *string `json:"userId"`
}

type AskResponse struct {
	Answer    string `json:"answer"`
	LatencyMs int    `json:"latencyMs"`
	MessageID *int64 `json:"messageId"`
}

type FeedbackRequest struct {
	MessageID  *int64 `json:"messageId"`
	ThumbsUp   bool   `json:"thumbsUp"`
	ThumbsDown bool   `json:"thumbsDown"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
