// FILE: internal/service/submission_service.go
package service

import (
	"context"
	"errors"
	"io"

	"paper-grading-be/internal/dto"
	"paper-grading-be/internal/entity"
	"paper-grading-be/internal/mapper"
	"paper-grading-be/internal/pkg/logger"
	"paper-grading-be/pkg/bitable"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RecordClient is the slice of the table-service client the gateway needs.
type RecordClient interface {
	CreateRecord(ctx context.Context, fields map[string]interface{}) (string, error)
	GetRecord(ctx context.Context, id string) (*bitable.Record, error)
	ListRecords(ctx context.Context, page, pageSize int) ([]bitable.Record, int, error)
	UploadFile(ctx context.Context, name, contentType string, content io.Reader, size int64) (*bitable.FileUploadResult, error)
}

type ISubmissionService interface {
	Submit(ctx context.Context, req *dto.SubmitPaperRequest) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Submission, error)
	ListPage(ctx context.Context, page, pageSize int) (*dto.SubmissionListResponse, error)
}

type submissionService struct {
	client    RecordClient
	mapper    *mapper.SubmissionMapper
	sysLogger logger.ILogger
}

func NewSubmissionService(client RecordClient, m *mapper.SubmissionMapper, sysLogger logger.ILogger) ISubmissionService {
	return &submissionService{
		client:    client,
		mapper:    m,
		sysLogger: sysLogger,
	}
}

// Submit maps the domain request onto the remote schema and creates one row.
// The mapping table lives in the mapper; optional fields are never sent empty.
func (s *submissionService) Submit(ctx context.Context, req *dto.SubmitPaperRequest) (string, error) {
	fields := s.mapper.ToRecordFields(req)

	id, err := s.client.CreateRecord(ctx, fields)
	if err != nil {
		s.sysLogger.Error("submission", "create record failed", map[string]interface{}{
			"title": req.Title,
			"error": err.Error(),
		})
		return "", err
	}

	s.sysLogger.Info("submission", "record created", map[string]interface{}{
		"record_id":       id,
		"has_attachments": len(req.Attachments) > 0,
	})

	return id, nil
}

// GetByID returns (nil, nil) when the record does not exist. Callers must be
// able to tell "gone" from a transient read failure.
func (s *submissionService) GetByID(ctx context.Context, id string) (*entity.Submission, error) {
	record, err := s.client.GetRecord(ctx, id)
	if err != nil {
		if errors.Is(err, bitable.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return s.mapper.ToEntity(record), nil
}

// ListPage fetches one page and normalizes each row. Rows missing their
// identifier are dropped: one corrupt row must not fail the whole page.
func (s *submissionService) ListPage(ctx context.Context, page, pageSize int) (*dto.SubmissionListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	records, total, err := s.client.ListRecords(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SubmissionResponse, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			s.sysLogger.Warn("submission", "dropping row without record id", nil)
			continue
		}
		rec := record
		items = append(items, *s.mapper.ToResponse(s.mapper.ToEntity(&rec)))
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return &dto.SubmissionListResponse{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
