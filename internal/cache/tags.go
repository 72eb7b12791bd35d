package cache

import (
	"fmt"
	"strconv"
)

// EntityType names a cached resource kind.
type EntityType string

const (
	TypeCourse       EntityType = "Course"
	TypeCourseMember EntityType = "CourseMember"
	TypeMilestone    EntityType = "Milestone"
	TypeGroup        EntityType = "Group"
	TypeGroupMember  EntityType = "GroupMember"
	TypeTemplate     EntityType = "Template"
	TypeSubmission   EntityType = "Submission"
	TypeComment      EntityType = "Comment"
)

// ListID marks the tag carried by collection reads.
const ListID = "LIST"

// Tag labels cached data so mutations can invalidate it.
type Tag struct {
	Type EntityType
	ID   string
}

func (t Tag) String() string {
	return fmt.Sprintf("%s:%s", t.Type, t.ID)
}

// EntityTag is the tag provided by a single-entity read.
func EntityTag(t EntityType, id uint) Tag {
	return Tag{Type: t, ID: strconv.FormatUint(uint64(id), 10)}
}

// ListTag is the tag provided by a collection read. A zero scope is the
// unscoped list, otherwise the list is owned by the given course (or group).
func ListTag(t EntityType, scope uint) Tag {
	if scope == 0 {
		return Tag{Type: t, ID: ListID}
	}
	return Tag{Type: t, ID: fmt.Sprintf("%s:%d", ListID, scope)}
}

// ListTags returns the tags of a collection read: its list tag plus one tag per item.
func ListTags(t EntityType, scope uint, ids ...uint) []Tag {
	tags := make([]Tag, 0, len(ids)+1)
	tags = append(tags, ListTag(t, scope))
	for _, id := range ids {
		tags = append(tags, EntityTag(t, id))
	}
	return tags
}

func intersects(a, b []Tag) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
