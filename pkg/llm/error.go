package llm

// ErrorResponse is the JSON body returned by the HTTP handlers on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
