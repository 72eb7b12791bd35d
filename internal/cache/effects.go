package cache

import "fmt"

type Operation string

const (
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
	OpPublish Operation = "publish"
)

// Mutation is a write on one entity type.
type Mutation struct {
	Type EntityType
	Op   Operation
}

func (m Mutation) String() string {
	return fmt.Sprintf("%s.%s", m.Type, m.Op)
}

// Target locates a mutated entity. Scope is the owner of the list the entity
// belongs to: the course for most types, the submission for comments and the
// group for group members.
type Target struct {
	Scope uint
	ID    uint
}

type effect struct {
	entity bool
	list   bool
	// owner is tagged with Target.Scope
	owner EntityType
}

var effects = map[Mutation]effect{
	{TypeCourse, OpCreate}: {list: true},
	{TypeCourse, OpUpdate}: {entity: true},
	{TypeCourse, OpDelete}: {entity: true, list: true},

	{TypeCourseMember, OpCreate}: {list: true, owner: TypeCourse},
	{TypeCourseMember, OpUpdate}: {list: true, owner: TypeCourse},
	{TypeCourseMember, OpDelete}: {list: true, owner: TypeCourse},

	{TypeMilestone, OpCreate}: {list: true},
	{TypeMilestone, OpUpdate}: {entity: true},
	{TypeMilestone, OpDelete}: {entity: true, list: true},

	{TypeGroup, OpCreate}: {list: true},
	{TypeGroup, OpUpdate}: {entity: true},
	{TypeGroup, OpDelete}: {entity: true, list: true},

	{TypeGroupMember, OpCreate}: {list: true, owner: TypeGroup},
	{TypeGroupMember, OpDelete}: {list: true, owner: TypeGroup},

	{TypeTemplate, OpCreate}:  {list: true},
	{TypeTemplate, OpUpdate}:  {entity: true},
	{TypeTemplate, OpPublish}: {entity: true},
	{TypeTemplate, OpDelete}:  {entity: true, list: true},

	{TypeSubmission, OpCreate}: {list: true},
	{TypeSubmission, OpUpdate}: {entity: true},
	{TypeSubmission, OpDelete}: {entity: true, list: true},

	{TypeComment, OpCreate}: {list: true},
	{TypeComment, OpUpdate}: {entity: true},
	{TypeComment, OpDelete}: {entity: true},
}

// Invalidates returns the tags a successful mutation invalidates. Unknown
// mutations invalidate nothing and report false.
func Invalidates(m Mutation, target Target) ([]Tag, bool) {
	e, ok := effects[m]
	if !ok {
		return nil, false
	}

	var tags []Tag
	if e.entity {
		tags = append(tags, EntityTag(m.Type, target.ID))
	}
	if e.list {
		tags = append(tags, ListTag(m.Type, target.Scope))
	}
	if e.owner != "" {
		tags = append(tags, EntityTag(e.owner, target.Scope))
	}
	return tags, true
}
