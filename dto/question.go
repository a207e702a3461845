package dto

// QuestionResponse deliberately omits the correct choice and explanation;
// those are only revealed in the practice result.
type QuestionResponse struct {
	ID         string   `json:"id"`
	Section    string   `json:"section"`
	Difficulty string   `json:"difficulty"`
	Prompt     string   `json:"prompt"`
	Choices    []string `json:"choices"`
	Answered   bool     `json:"answered"`
}

type QuestionListResponse struct {
	Questions []QuestionResponse `json:"questions"`
	Total     int                `json:"total"`
}
