package mapper

import (
	"paper-grading-be/internal/dto"
	"paper-grading-be/internal/entity"
	"paper-grading-be/pkg/bitable"
)

// Remote column names for the submissions table. The external schema keys
// columns by natural-language strings; this table is the only place they
// appear, consulted by both the serialize and normalize paths.
const (
	FieldTitle                  = "论文标题"
	FieldCoreContent            = "文档核心内容"
	FieldOutline                = "论文目录"
	FieldMethodology            = "论文采用论证方法"
	FieldAttachments            = "附件上传"
	FieldAttachmentSummary      = "附件内容摘要"
	FieldResearchMethodScore    = "论文研究方法得分"
	FieldResearchMethodCritique = "论文研究方法修改意见"
	FieldResearchMethodAnalysis = "论文研究方法完整分析"
	FieldStructureScore         = "论文结构得分"
	FieldStructureCritique      = "论文结构修改意见"
	FieldStructureAnalysis      = "论文结构完整分析"
	FieldArgumentLogicScore     = "论文论证逻辑得分"
	FieldArgumentLogicCritique  = "论文论证逻辑修改意见"
	FieldArgumentLogicAnalysis  = "论文论证逻辑完整分析"
	FieldConclusion             = "论文结论"
)

// ProcessingTitle replaces the backend's sentinel titles so the raw
// placeholder text never reaches a user.
const ProcessingTitle = "处理中"

// sentinelTitles are values the backend writes when no real title could be
// extracted yet.
var sentinelTitles = map[string]bool{
	"待评分": true,
	"无标题": true,
}

type SubmissionMapper struct{}

func NewSubmissionMapper() *SubmissionMapper {
	return &SubmissionMapper{}
}

// ToRecordFields serializes a submit request into the remote field map.
// Optional fields are omitted entirely rather than sent empty: the remote
// schema treats presence as meaningful for attachment-list columns.
func (m *SubmissionMapper) ToRecordFields(req *dto.SubmitPaperRequest) map[string]interface{} {
	fields := map[string]interface{}{
		FieldTitle:       req.Title,
		FieldCoreContent: req.Content,
	}

	if req.Outline != "" {
		fields[FieldOutline] = req.Outline
	}
	if req.Methodology != "" {
		fields[FieldMethodology] = req.Methodology
	}
	if len(req.Attachments) > 0 {
		attachments := make([]map[string]string, 0, len(req.Attachments))
		for _, a := range req.Attachments {
			attachments = append(attachments, map[string]string{
				"text": a.Name,
				"link": a.URL,
			})
		}
		fields[FieldAttachments] = attachments

		if req.AttachmentSummary != "" {
			fields[FieldAttachmentSummary] = req.AttachmentSummary
		}
	}

	return fields
}

// ToEntity normalizes one remote record into a Submission. Sentinel titles
// become the fixed processing label.
func (m *SubmissionMapper) ToEntity(record *bitable.Record) *entity.Submission {
	if record == nil {
		return nil
	}

	title := fieldString(record.Fields, FieldTitle)
	if title == "" || sentinelTitles[title] {
		title = ProcessingTitle
	}

	return &entity.Submission{
		Id:                record.ID,
		Title:             title,
		CoreContent:       fieldString(record.Fields, FieldCoreContent),
		Outline:           fieldString(record.Fields, FieldOutline),
		Methodology:       fieldString(record.Fields, FieldMethodology),
		AttachmentSummary: fieldString(record.Fields, FieldAttachmentSummary),
		Attachments:       fieldAttachments(record.Fields, FieldAttachments),
		ResearchMethod: entity.RubricResult{
			Score:    fieldString(record.Fields, FieldResearchMethodScore),
			Critique: fieldString(record.Fields, FieldResearchMethodCritique),
			Analysis: fieldString(record.Fields, FieldResearchMethodAnalysis),
		},
		Structure: entity.RubricResult{
			Score:    fieldString(record.Fields, FieldStructureScore),
			Critique: fieldString(record.Fields, FieldStructureCritique),
			Analysis: fieldString(record.Fields, FieldStructureAnalysis),
		},
		ArgumentLogic: entity.RubricResult{
			Score:    fieldString(record.Fields, FieldArgumentLogicScore),
			Critique: fieldString(record.Fields, FieldArgumentLogicCritique),
			Analysis: fieldString(record.Fields, FieldArgumentLogicAnalysis),
		},
		Conclusion: fieldString(record.Fields, FieldConclusion),
	}
}

func (m *SubmissionMapper) ToResponse(s *entity.Submission) *dto.SubmissionResponse {
	if s == nil {
		return nil
	}

	attachments := make([]dto.AttachmentDTO, 0, len(s.Attachments))
	for _, a := range s.Attachments {
		attachments = append(attachments, dto.AttachmentDTO{Name: a.Name, URL: a.URL})
	}
	if len(attachments) == 0 {
		attachments = nil
	}

	return &dto.SubmissionResponse{
		Id:                s.Id,
		Title:             s.Title,
		Content:           s.CoreContent,
		Outline:           s.Outline,
		Methodology:       s.Methodology,
		AttachmentSummary: s.AttachmentSummary,
		Attachments:       attachments,
		ResearchMethod: dto.RubricResultDTO{
			Score:    s.ResearchMethod.Score,
			Critique: s.ResearchMethod.Critique,
			Analysis: s.ResearchMethod.Analysis,
		},
		Structure: dto.RubricResultDTO{
			Score:    s.Structure.Score,
			Critique: s.Structure.Critique,
			Analysis: s.Structure.Analysis,
		},
		ArgumentLogic: dto.RubricResultDTO{
			Score:    s.ArgumentLogic.Score,
			Critique: s.ArgumentLogic.Critique,
			Analysis: s.ArgumentLogic.Analysis,
		},
		Conclusion: s.Conclusion,
		Status:     s.Status(),
	}
}

// fieldString coerces a remote text value to a plain string. The service
// returns either a bare string or a list of rich-text segments shaped
// {"text": "..."}; both forms appear in the wild for the same column.
func fieldString(fields map[string]interface{}, key string) string {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return ""
	}

	switch v := raw.(type) {
	case string:
		return v
	case []interface{}:
		var out string
		for _, seg := range v {
			if m, ok := seg.(map[string]interface{}); ok {
				if text, ok := m["text"].(string); ok {
					out += text
				}
			}
		}
		return out
	default:
		return ""
	}
}

func fieldAttachments(fields map[string]interface{}, key string) []entity.Attachment {
	raw, ok := fields[key].([]interface{})
	if !ok {
		return nil
	}

	attachments := make([]entity.Attachment, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := m["text"].(string)
		if name == "" {
			name, _ = m["name"].(string)
		}
		link, _ := m["link"].(string)
		if link == "" {
			link, _ = m["url"].(string)
		}
		if name == "" && link == "" {
			continue
		}
		attachments = append(attachments, entity.Attachment{Name: name, URL: link})
	}

	if len(attachments) == 0 {
		return nil
	}
	return attachments
}
