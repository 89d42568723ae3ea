package api

// Wire types for the ragchat backend.

// SessionResponse is returned by GET /session/.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
}

// PromptRequest is the JSON body for POST /prompt-stream/ and POST /prompt/.
type PromptRequest struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
	Timestamp string `json:"timestamp"`
}

// PromptResponse is returned by the non-streaming POST /prompt/ endpoint.
type PromptResponse struct {
	LLMResponse string `json:"llmResponse"`
	Timestamp   string `json:"timestamp"`
}
