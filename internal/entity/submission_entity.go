package entity

// Attachment is one uploaded file reference. Set once at creation,
// append-only, never edited afterwards.
type Attachment struct {
	Name string
	URL  string
}

// RubricResult carries one grading dimension. Score is string-typed on
// purpose: the backend may emit placeholder text instead of a number.
type RubricResult struct {
	Score    string
	Critique string
	Analysis string
}

// Submission is one user-uploaded document and its (possibly partial)
// grading result. Id is assigned by the external table service and never
// changes; every other field reflects the latest remote fetch.
type Submission struct {
	Id                string
	Title             string
	CoreContent       string
	Outline           string
	Methodology       string
	AttachmentSummary string
	Attachments       []Attachment

	ResearchMethod RubricResult
	Structure      RubricResult
	ArgumentLogic  RubricResult

	Conclusion string
}

// Complete reports whether scoring has produced at least one rubric score.
func (s *Submission) Complete() bool {
	return s.ResearchMethod.Score != "" || s.Structure.Score != "" || s.ArgumentLogic.Score != ""
}

func (s *Submission) Status() string {
	if s.Complete() {
		return "completed"
	}
	return "pending"
}
