package mapper

import (
	"paper-grading-be/internal/dto"
	"paper-grading-be/internal/entity"
)

type UploadMapper struct {
	submissions *SubmissionMapper
}

func NewUploadMapper(submissions *SubmissionMapper) *UploadMapper {
	return &UploadMapper{submissions: submissions}
}

func (m *UploadMapper) ToResponse(attempt *entity.UploadAttempt) *dto.UploadAttemptResponse {
	res := &dto.UploadAttemptResponse{
		AttemptId: attempt.Id,
		State:     string(attempt.State),
		RecordId:  attempt.RecordId,
		ErrorKind: string(attempt.FailureKind),
		Message:   attempt.Message,
	}

	if attempt.FileName != "" {
		res.File = &dto.UploadedFileDTO{
			Name:      attempt.FileName,
			Type:      attempt.FileType,
			URL:       attempt.FileURL,
			FileToken: attempt.FileToken,
		}
	}

	if attempt.Submission != nil {
		res.Submission = m.submissions.ToResponse(attempt.Submission)
	}

	return res
}
