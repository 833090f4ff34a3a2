package dto

type UploadedFileDTO struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	FileToken string `json:"file_token,omitempty"`
}

type UploadAttemptResponse struct {
	AttemptId  string              `json:"attempt_id"`
	State      string              `json:"state"`
	RecordId   string              `json:"record_id,omitempty"`
	File       *UploadedFileDTO    `json:"file,omitempty"`
	Submission *SubmissionResponse `json:"submission,omitempty"`
	ErrorKind  string              `json:"error_kind,omitempty"`
	Message    string              `json:"message,omitempty"`
}
