package models

import "time"

type Comment struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	SubmissionID  uint       `json:"submission_id" gorm:"not null;index"`
	FieldIndex    int        `json:"field_index" gorm:"not null"`
	CommenterID   string     `json:"commenter_id" gorm:"not null;size:255"`
	CommenterRole CourseRole `json:"commenter_role" gorm:"size:20"`
	Content       string     `json:"content" gorm:"type:text"`
	IsDeleted     bool       `json:"is_deleted" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Commenter *User `json:"commenter,omitempty" gorm:"foreignKey:CommenterID"`
}

func (Comment) TableName() string {
	return "comments"
}
