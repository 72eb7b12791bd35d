package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionType string

const (
	SubmissionIndividual SubmissionType = "individual"
	SubmissionGroup      SubmissionType = "group"
	SubmissionEither     SubmissionType = "either"
)

func (t SubmissionType) IsValid() bool {
	switch t {
	case SubmissionIndividual, SubmissionGroup, SubmissionEither:
		return true
	default:
		return false
	}
}

// Allows reports whether a submission of type s may be created from a template of type t.
func (t SubmissionType) Allows(s SubmissionType) bool {
	if t == SubmissionEither {
		return s == SubmissionIndividual || s == SubmissionGroup
	}
	return t == s
}

type Template struct {
	ID             uint                           `json:"id" gorm:"primaryKey"`
	CourseID       uint                           `json:"course_id" gorm:"not null;index"`
	Name           string                         `json:"name" gorm:"not null;size:200"`
	Description    string                         `json:"description" gorm:"type:text"`
	SubmissionType SubmissionType                 `json:"submission_type" gorm:"not null;size:20"`
	IsPublished    bool                           `json:"is_published" gorm:"default:false;index"`
	FormFields     datatypes.JSONSlice[FormField] `json:"form_fields" gorm:"type:jsonb;not null"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Template) TableName() string {
	return "templates"
}

// Fields returns the form fields as a plain slice.
func (t *Template) Fields() []FormField {
	return []FormField(t.FormFields)
}
