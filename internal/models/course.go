package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseRole string

const (
	CourseRoleOwner      CourseRole = "owner"
	CourseRoleInstructor CourseRole = "instructor"
	CourseRoleStudent    CourseRole = "student"
)

func (r CourseRole) IsValid() bool {
	switch r {
	case CourseRoleOwner, CourseRoleInstructor, CourseRoleStudent:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role may author templates and manage the course.
func (r CourseRole) IsStaff() bool {
	return r == CourseRoleOwner || r == CourseRoleInstructor
}

type Course struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"not null;size:200"`
	Description string     `json:"description" gorm:"type:text"`
	CourseCode  string     `json:"course_code" gorm:"size:50;index"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	OwnerID   string         `json:"owner_id" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseMember struct {
	CourseID  uint       `json:"course_id" gorm:"primaryKey"`
	UserID    string     `json:"user_id" gorm:"primaryKey;size:255"`
	Role      CourseRole `json:"role" gorm:"not null;size:20"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (CourseMember) TableName() string {
	return "course_members"
}
