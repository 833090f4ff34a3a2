package dto

type AttachmentDTO struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
}

type SubmitPaperRequest struct {
	Title             string          `json:"title" validate:"required"`
	Content           string          `json:"content" validate:"required"`
	Outline           string          `json:"outline"`
	Methodology       string          `json:"methodology"`
	AttachmentSummary string          `json:"attachment_summary"`
	Attachments       []AttachmentDTO `json:"attachments" validate:"dive"`
}

type SubmitPaperResponse struct {
	Id string `json:"id"`
}

type RubricResultDTO struct {
	Score    string `json:"score,omitempty"`
	Critique string `json:"critique,omitempty"`
	Analysis string `json:"analysis,omitempty"`
}

type SubmissionResponse struct {
	Id                string          `json:"id"`
	Title             string          `json:"title"`
	Content           string          `json:"content"`
	Outline           string          `json:"outline,omitempty"`
	Methodology       string          `json:"methodology,omitempty"`
	AttachmentSummary string          `json:"attachment_summary,omitempty"`
	Attachments       []AttachmentDTO `json:"attachments,omitempty"`
	ResearchMethod    RubricResultDTO `json:"research_method"`
	Structure         RubricResultDTO `json:"structure"`
	ArgumentLogic     RubricResultDTO `json:"argument_logic"`
	Conclusion        string          `json:"conclusion,omitempty"`
	Status            string          `json:"status"`
}

type SubmissionListResponse struct {
	Items      []SubmissionResponse `json:"items"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	Total      int                  `json:"total"`
	TotalPages int                  `json:"total_pages"`
}
