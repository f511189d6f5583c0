package insights

type InsightRequest struct {
	Prompt string `json:"prompt"`
}

type InsightResponse struct {
	Message string `json:"message"`
}
