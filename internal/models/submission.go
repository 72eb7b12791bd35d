package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Submission struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	CourseID       uint           `json:"course_id" gorm:"not null;index"`
	TemplateID     *uint          `json:"template_id" gorm:"index"`
	Name           string         `json:"name" gorm:"not null;size:200"`
	Description    string         `json:"description" gorm:"type:text"`
	IsDraft        bool           `json:"is_draft" gorm:"not null;default:false"`
	SubmissionType SubmissionType `json:"submission_type" gorm:"not null;size:20"`
	GroupID        *uint          `json:"group_id" gorm:"index"`

	CreatedByID string `json:"created_by_id" gorm:"not null;size:255;index"`
	EditedByID  string `json:"edited_by_id" gorm:"size:255"`

	FormResponseData datatypes.JSONSlice[FormResponseField] `json:"form_response_data" gorm:"type:jsonb;not null"`

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Group     *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	CreatedBy *User  `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	EditedBy  *User  `json:"edited_by,omitempty" gorm:"foreignKey:EditedByID"`
}

func (Submission) TableName() string {
	return "submissions"
}

// Responses returns the response fields as a plain slice.
func (s *Submission) Responses() []FormResponseField {
	return []FormResponseField(s.FormResponseData)
}

// SubmissionWithComments pairs a submission with its resolved comments, as needed by the export.
type SubmissionWithComments struct {
	Submission *Submission
	Comments   []*Comment
}
