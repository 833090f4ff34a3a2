package entity

import "time"

type AttemptState string

const (
	AttemptStateIdle           AttemptState = "idle"
	AttemptStateReading        AttemptState = "reading"
	AttemptStateSubmitting     AttemptState = "submitting"
	AttemptStateAwaitingResult AttemptState = "awaiting-result"
	AttemptStateReady          AttemptState = "ready"
	AttemptStateFailed         AttemptState = "failed"
)

type FailureKind string

const (
	FailureFileTooLarge    FailureKind = "file-too-large"
	FailureUnsupportedType FailureKind = "unsupported-file-type"
	FailureRemote          FailureKind = "remote-failure"
)

// UploadAttempt tracks one run of the upload state machine. Attempts are
// overwritten wholesale on every transition; a failed attempt is terminal
// and retry means a fresh attempt with a fresh id.
type UploadAttempt struct {
	Id        string
	ClientKey string
	State     AttemptState

	RecordId  string
	FileName  string
	FileType  string
	FileURL   string
	FileToken string

	Submission *Submission

	FailureKind FailureKind
	Message     string

	CreatedAt time.Time
	UpdatedAt time.Time
}
