// FILE: internal/service/upload_service.go
package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"paper-grading-be/internal/dto"
	"paper-grading-be/internal/entity"
	"paper-grading-be/internal/pkg/extract"
	"paper-grading-be/internal/pkg/logger"
	"paper-grading-be/internal/repository/memory"
	"paper-grading-be/pkg/events"
	pktNats "paper-grading-be/pkg/nats"

	"github.com/google/uuid"
)

const MaxFileSize = 10 * 1024 * 1024 // 10MB

var (
	ErrFileTooLarge        = errors.New("upload: file exceeds the 10MB limit")
	ErrUnsupportedFileType = errors.New("upload: unsupported file type")
	ErrAttemptNotFound     = errors.New("upload: attempt not found")
)

var allowedFileTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

// Placeholder values written at creation; the grading backend overwrites
// them once extraction and scoring run.
const (
	placeholderTitle   = "待评分"
	placeholderContent = "（正文见附件）"
)

type UploadInput struct {
	ClientKey   string
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
	Title       string
}

type IUploadService interface {
	ValidateFile(contentType string, size int64) error
	StartUpload(ctx context.Context, input *UploadInput) (*entity.UploadAttempt, error)
	GetAttempt(ctx context.Context, attemptID string, refresh bool) (*entity.UploadAttempt, error)
	Refresh(ctx context.Context, attemptID string) (*entity.UploadAttempt, error)
}

type uploadService struct {
	attempts       *memory.AttemptRepository
	gateway        ISubmissionService
	client         RecordClient
	extractor      extract.Extractor
	publisher      IPublisherService
	eventPublisher *pktNats.Publisher
	sysLogger      logger.ILogger
}

func NewUploadService(
	attempts *memory.AttemptRepository,
	gateway ISubmissionService,
	client RecordClient,
	extractor extract.Extractor,
	publisher IPublisherService,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) IUploadService {
	return &uploadService{
		attempts:       attempts,
		gateway:        gateway,
		client:         client,
		extractor:      extractor,
		publisher:      publisher,
		eventPublisher: eventPublisher,
		sysLogger:      sysLogger,
	}
}

// ValidateFile enforces the size and type limits. It runs before the file
// is read and before any remote call.
func (s *uploadService) ValidateFile(contentType string, size int64) error {
	if size > MaxFileSize {
		return ErrFileTooLarge
	}

	mediaType := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if !allowedFileTypes[mediaType] {
		return ErrUnsupportedFileType
	}
	return nil
}

// StartUpload runs one attempt through reading -> submitting ->
// awaiting-result. Validation errors are returned directly (no attempt is
// recorded); failures past validation land the attempt in the failed state.
func (s *uploadService) StartUpload(ctx context.Context, input *UploadInput) (*entity.UploadAttempt, error) {
	if err := s.ValidateFile(input.ContentType, input.Size); err != nil {
		return nil, err
	}

	now := time.Now()
	attempt := &entity.UploadAttempt{
		Id:        uuid.New().String(),
		ClientKey: input.ClientKey,
		State:     entity.AttemptStateReading,
		FileName:  input.FileName,
		FileType:  input.ContentType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.attempts.Save(attempt)
	// A new attempt supersedes any older one still in flight for this client.
	s.attempts.SetLatest(input.ClientKey, attempt.Id)

	title := input.Title
	if title == "" {
		title = placeholderTitle
	}

	var content string
	var attachments []dto.AttachmentDTO

	if s.extractor.Supports(input.ContentType) {
		text, err := s.extractor.Extract(ctx, input.FileName, input.Content)
		if err != nil {
			return s.fail(attempt, entity.FailureRemote, "failed to read file: "+err.Error()), nil
		}
		content = text
	} else {
		// Binary formats go to the table service's drive as-is; the grading
		// backend owns their text extraction.
		result, err := s.client.UploadFile(ctx, input.FileName, input.ContentType, input.Content, input.Size)
		if err != nil {
			return s.fail(attempt, entity.FailureRemote, "file upload failed: "+err.Error()), nil
		}
		attempt.FileToken = result.FileToken
		attempt.FileURL = result.URL
		attachments = append(attachments, dto.AttachmentDTO{Name: input.FileName, URL: result.URL})
		content = placeholderContent
	}

	attempt.State = entity.AttemptStateSubmitting
	if !s.saveIfCurrent(attempt) {
		return attempt, nil
	}

	recordID, err := s.gateway.Submit(ctx, &dto.SubmitPaperRequest{
		Title:       title,
		Content:     content,
		Attachments: attachments,
	})
	if err != nil {
		return s.fail(attempt, entity.FailureRemote, "submission failed: "+err.Error()), nil
	}

	attempt.RecordId = recordID
	attempt.State = entity.AttemptStateAwaitingResult
	if !s.saveIfCurrent(attempt) {
		return attempt, nil
	}

	if s.publisher != nil {
		if perr := s.publisher.PublishSubmissionCreated(ctx, attempt.Id, recordID); perr != nil {
			s.sysLogger.Warn("upload", "failed to schedule auto-refresh", map[string]interface{}{
				"attempt_id": attempt.Id,
				"error":      perr.Error(),
			})
		}
	}
	s.publishEvent(ctx, "SUBMISSION_CREATED", attempt)

	return attempt, nil
}

// GetAttempt returns the stored attempt; with refresh it also refetches the
// remote record when the attempt is still awaiting its result.
func (s *uploadService) GetAttempt(ctx context.Context, attemptID string, refresh bool) (*entity.UploadAttempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, ErrAttemptNotFound
	}
	if refresh && attempt.State == entity.AttemptStateAwaitingResult {
		return s.Refresh(ctx, attemptID)
	}
	return attempt, nil
}

// Refresh refetches the remote record for an awaiting attempt. A record
// that exists but carries no rubric score keeps the attempt awaiting; only
// a scored record moves it to ready. Transient read failures never fail
// the attempt.
func (s *uploadService) Refresh(ctx context.Context, attemptID string) (*entity.UploadAttempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, ErrAttemptNotFound
	}
	if attempt.State != entity.AttemptStateAwaitingResult {
		return attempt, nil
	}

	submission, err := s.gateway.GetByID(ctx, attempt.RecordId)
	if err != nil {
		s.sysLogger.Warn("upload", "refresh failed, staying in awaiting-result", map[string]interface{}{
			"attempt_id": attempt.Id,
			"record_id":  attempt.RecordId,
			"error":      err.Error(),
		})
		return attempt, nil
	}
	if submission == nil {
		// The service can lag right after creation; keep waiting.
		return attempt, nil
	}

	updated := *attempt
	updated.Submission = submission
	if submission.Complete() {
		updated.State = entity.AttemptStateReady
	}

	if !s.saveIfCurrent(&updated) {
		// Superseded while the fetch was in flight; discard the result.
		return attempt, nil
	}

	if updated.State == entity.AttemptStateReady {
		s.publishEvent(ctx, "SUBMISSION_GRADED", &updated)
	}

	return &updated, nil
}

// saveIfCurrent persists the attempt unless a newer attempt for the same
// client has taken over. Late completions of superseded attempts are dropped.
func (s *uploadService) saveIfCurrent(attempt *entity.UploadAttempt) bool {
	if latest, ok := s.attempts.Latest(attempt.ClientKey); ok && latest != attempt.Id {
		s.sysLogger.Warn("upload", "discarding update for superseded attempt", map[string]interface{}{
			"attempt_id": attempt.Id,
			"latest":     latest,
		})
		return false
	}
	attempt.UpdatedAt = time.Now()
	s.attempts.Save(attempt)
	return true
}

func (s *uploadService) fail(attempt *entity.UploadAttempt, kind entity.FailureKind, message string) *entity.UploadAttempt {
	attempt.State = entity.AttemptStateFailed
	attempt.FailureKind = kind
	attempt.Message = message
	s.saveIfCurrent(attempt)

	s.sysLogger.Error("upload", "attempt failed", map[string]interface{}{
		"attempt_id": attempt.Id,
		"kind":       string(kind),
		"error":      message,
	})

	return attempt
}

func (s *uploadService) publishEvent(ctx context.Context, eventType string, attempt *entity.UploadAttempt) {
	if s.eventPublisher == nil {
		return
	}
	event := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"attempt_id": attempt.Id,
			"record_id":  attempt.RecordId,
			"file_name":  attempt.FileName,
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.sysLogger.Warn("upload", "failed to publish lifecycle event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}
