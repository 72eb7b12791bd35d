package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "course-service"
	eventVersion = "1.0"
)

// EventType represents the kinds of domain events the service emits
type EventType string

const (
	// Template events
	EventTemplatePublished EventType = "template.published"

	// Submission events
	EventSubmissionCreated EventType = "submission.created"
	EventSubmissionUpdated EventType = "submission.updated"
	EventSubmissionDeleted EventType = "submission.deleted"

	// Comment events
	EventCommentCreated EventType = "comment.created"
)

// Event is the envelope for all domain events
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	// CourseID keys the event so a course's events stay ordered
	CourseID uint                   `json:"course_id"`
	Data     interface{}            `json:"data"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type TemplatePublishedEvent struct {
	TemplateID   uint   `json:"template_id"`
	CourseID     uint   `json:"course_id"`
	TemplateName string `json:"template_name"`
	FieldCount   int    `json:"field_count"`
	PublisherID  string `json:"publisher_id"`
}

type SubmissionEvent struct {
	SubmissionID   uint   `json:"submission_id"`
	CourseID       uint   `json:"course_id"`
	TemplateID     *uint  `json:"template_id,omitempty"`
	GroupID        *uint  `json:"group_id,omitempty"`
	SubmissionName string `json:"submission_name"`
	IsDraft        bool   `json:"is_draft"`
	ActorID        string `json:"actor_id"`
}

type CommentCreatedEvent struct {
	CommentID    uint   `json:"comment_id"`
	SubmissionID uint   `json:"submission_id"`
	CourseID     uint   `json:"course_id"`
	FieldIndex   int    `json:"field_index"`
	CommenterID  string `json:"commenter_id"`
	// OwnerID is the submission author to notify
	OwnerID string `json:"owner_id"`
}

func newEvent(t EventType, courseID uint, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      t,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		CourseID:  courseID,
		Data:      data,
	}
}

func NewTemplatePublishedEvent(templateID, courseID uint, name string, fieldCount int, publisherID string) *Event {
	return newEvent(EventTemplatePublished, courseID, TemplatePublishedEvent{
		TemplateID:   templateID,
		CourseID:     courseID,
		TemplateName: name,
		FieldCount:   fieldCount,
		PublisherID:  publisherID,
	})
}

// NewSubmissionEvent builds a submission.created, submission.updated or submission.deleted event.
func NewSubmissionEvent(t EventType, data SubmissionEvent) *Event {
	return newEvent(t, data.CourseID, data)
}

func NewCommentCreatedEvent(data CommentCreatedEvent) *Event {
	return newEvent(EventCommentCreated, data.CourseID, data)
}

// GenerateEventID returns a random unique event ID
func GenerateEventID() string {
	return uuid.NewString()
}
