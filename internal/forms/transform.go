package forms

import "github.com/SAP-F-2025/course-service/internal/models"

// SubmissionOverrides are the caller-chosen attributes of a new submission.
// They never affect the response shell.
type SubmissionOverrides struct {
	Name           *string                `json:"name" form:"name"`
	Description    *string                `json:"description" form:"description"`
	GroupID        *uint                  `json:"group_id" form:"group_id"`
	IsDraft        *bool                  `json:"is_draft" form:"is_draft"`
	SubmissionType *models.SubmissionType `json:"submission_type" form:"submission_type"`
}

// SubmissionView is a blank submission ready to be filled in.
type SubmissionView struct {
	TemplateID       *uint                      `json:"template_id,omitempty"`
	Name             string                     `json:"name"`
	Description      string                     `json:"description"`
	IsDraft          bool                       `json:"is_draft"`
	SubmissionType   models.SubmissionType      `json:"submission_type"`
	GroupID          *uint                      `json:"group_id,omitempty"`
	FormResponseData []models.FormResponseField `json:"form_response_data"`
}

// TemplateToSubmissionView builds one empty response per template field, in
// template order: "" for scalar kinds, [] for mrq, display fields unchanged.
func TemplateToSubmissionView(template *models.Template, overrides SubmissionOverrides) SubmissionView {
	view := SubmissionView{
		Name:             template.Name,
		Description:      template.Description,
		SubmissionType:   defaultSubmissionType(template.SubmissionType, overrides.GroupID),
		FormResponseData: make([]models.FormResponseField, 0, len(template.FormFields)),
	}
	if template.ID != 0 {
		id := template.ID
		view.TemplateID = &id
	}

	for _, field := range template.FormFields {
		view.FormResponseData = append(view.FormResponseData, models.NewResponseField(field))
	}

	if overrides.Name != nil {
		view.Name = *overrides.Name
	}
	if overrides.Description != nil {
		view.Description = *overrides.Description
	}
	if overrides.IsDraft != nil {
		view.IsDraft = *overrides.IsDraft
	}
	if overrides.GroupID != nil {
		id := *overrides.GroupID
		view.GroupID = &id
	}
	if overrides.SubmissionType != nil && template.SubmissionType.Allows(*overrides.SubmissionType) {
		view.SubmissionType = *overrides.SubmissionType
	}
	return view
}

func defaultSubmissionType(t models.SubmissionType, groupID *uint) models.SubmissionType {
	if t != models.SubmissionEither {
		return t
	}
	if groupID != nil {
		return models.SubmissionGroup
	}
	return models.SubmissionIndividual
}
