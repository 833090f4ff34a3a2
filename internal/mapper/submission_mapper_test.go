package mapper

import (
	"testing"

	"paper-grading-be/internal/dto"
	"paper-grading-be/internal/entity"
	"paper-grading-be/pkg/bitable"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecordFields(t *testing.T) {
	m := NewSubmissionMapper()

	t.Run("minimal request sends exactly title and content", func(t *testing.T) {
		fields := m.ToRecordFields(&dto.SubmitPaperRequest{Title: "T", Content: "C"})

		assert.Equal(t, map[string]interface{}{
			FieldTitle:       "T",
			FieldCoreContent: "C",
		}, fields)
	})

	t.Run("optional fields included when set", func(t *testing.T) {
		fields := m.ToRecordFields(&dto.SubmitPaperRequest{
			Title:             "T",
			Content:           "C",
			Outline:           "O",
			Methodology:       "M",
			AttachmentSummary: "S",
			Attachments: []dto.AttachmentDTO{
				{Name: "paper.pdf", URL: "https://files.example/ft-1"},
			},
		})

		assert.Equal(t, "O", fields[FieldOutline])
		assert.Equal(t, "M", fields[FieldMethodology])
		assert.Equal(t, "S", fields[FieldAttachmentSummary])
		assert.Equal(t, []map[string]string{
			{"text": "paper.pdf", "link": "https://files.example/ft-1"},
		}, fields[FieldAttachments])
	})

	t.Run("attachment summary dropped without attachments", func(t *testing.T) {
		fields := m.ToRecordFields(&dto.SubmitPaperRequest{
			Title:             "T",
			Content:           "C",
			AttachmentSummary: "S",
		})

		assert.NotContains(t, fields, FieldAttachmentSummary)
		assert.NotContains(t, fields, FieldAttachments)
	})
}

func TestToEntityTitleNormalization(t *testing.T) {
	m := NewSubmissionMapper()

	tests := []struct {
		name      string
		title     interface{}
		wantTitle string
	}{
		{name: "real title kept", title: "深度学习综述", wantTitle: "深度学习综述"},
		{name: "pending sentinel replaced", title: "待评分", wantTitle: ProcessingTitle},
		{name: "untitled sentinel replaced", title: "无标题", wantTitle: ProcessingTitle},
		{name: "empty title replaced", title: "", wantTitle: ProcessingTitle},
		{name: "missing title replaced", title: nil, wantTitle: ProcessingTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]interface{}{}
			if tt.title != nil {
				fields[FieldTitle] = tt.title
			}

			got := m.ToEntity(&bitable.Record{ID: "rec1", Fields: fields})
			assert.Equal(t, tt.wantTitle, got.Title)
		})
	}
}

func TestToEntityRichTextSegments(t *testing.T) {
	m := NewSubmissionMapper()

	got := m.ToEntity(&bitable.Record{
		ID: "rec1",
		Fields: map[string]interface{}{
			FieldTitle: []interface{}{
				map[string]interface{}{"text": "分段"},
				map[string]interface{}{"text": "标题"},
			},
			FieldConclusion: "结论",
		},
	})

	assert.Equal(t, "分段标题", got.Title)
	assert.Equal(t, "结论", got.Conclusion)
}

func TestToEntityAttachments(t *testing.T) {
	m := NewSubmissionMapper()

	got := m.ToEntity(&bitable.Record{
		ID: "rec1",
		Fields: map[string]interface{}{
			FieldAttachments: []interface{}{
				map[string]interface{}{"text": "a.pdf", "link": "https://x/a"},
				map[string]interface{}{"name": "b.pdf", "url": "https://x/b"},
				map[string]interface{}{"other": true},
			},
		},
	})

	require.Len(t, got.Attachments, 2)
	assert.Equal(t, entity.Attachment{Name: "a.pdf", URL: "https://x/a"}, got.Attachments[0])
	assert.Equal(t, entity.Attachment{Name: "b.pdf", URL: "https://x/b"}, got.Attachments[1])
}

func TestToResponseStatus(t *testing.T) {
	m := NewSubmissionMapper()

	t.Run("pending without scores", func(t *testing.T) {
		res := m.ToResponse(&entity.Submission{Id: "rec1", Title: "T"})
		assert.Equal(t, "pending", res.Status)
	})

	t.Run("completed with any rubric score", func(t *testing.T) {
		res := m.ToResponse(&entity.Submission{
			Id:        "rec1",
			Title:     "T",
			Structure: entity.RubricResult{Score: "85"},
		})
		assert.Equal(t, "completed", res.Status)
	})
}
