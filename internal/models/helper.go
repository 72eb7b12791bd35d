package models

// ExportFormat selects the archive produced by the submission export.
type ExportFormat string

const (
	ExportZip  ExportFormat = "zip"
	ExportXlsx ExportFormat = "xlsx"
)

type ExportRequest struct {
	Format       ExportFormat `json:"format" form:"format" validate:"omitempty,oneof=zip xlsx"`
	TemplateID   *uint        `json:"template_id" form:"template_id"`
	IncludeDraft bool         `json:"include_draft" form:"include_draft"`
}
