package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ctx    context.Context
	repo   *fakeRepository
	store  *cache.MemoryStore
	events *events.MockEventPublisher
	svc    ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := newFakeRepository()
	for _, id := range []string{"owner", "inst", "stu1", "stu2", "outsider"} {
		repo.users[id] = &models.User{ID: id, FullName: "User " + id}
	}

	store := cache.NewMemoryStore()
	publisher := events.NewMockEventPublisher(logger)
	return &testEnv{
		ctx:    context.Background(),
		repo:   repo,
		store:  store,
		events: publisher,
		svc: NewServiceManager(repo, logger, Options{
			Cache:     cache.NewTagCache(store, time.Minute, logger),
			Publisher: publisher,
		}),
	}
}

// newCourse creates a course owned by "owner" with "inst" as instructor and
// "stu1", "stu2" as students.
func (e *testEnv) newCourse(t *testing.T) uint {
	t.Helper()
	course, err := e.svc.Course().Create(e.ctx, &CreateCourseRequest{Name: "Algorithms"}, "owner")
	require.NoError(t, err)

	for user, role := range map[string]models.CourseRole{
		"inst": models.CourseRoleInstructor,
		"stu1": models.CourseRoleStudent,
		"stu2": models.CourseRoleStudent,
	} {
		_, err := e.svc.Course().AddMember(e.ctx, course.ID, &AddMemberRequest{UserID: user, Role: role}, "owner")
		require.NoError(t, err)
	}
	return course.ID
}

func (e *testEnv) eventTypes() []events.EventType {
	var out []events.EventType
	for _, ev := range e.events.GetPublishedEvents() {
		out = append(out, ev.Type)
	}
	return out
}

func validationErrors(t *testing.T, err error) ValidationErrors {
	t.Helper()
	var errs ValidationErrors
	require.True(t, errors.As(err, &errs), "expected validation errors, got %v", err)
	return errs
}

func strPtr(s string) *string { return &s }

// ===== COURSES =====

func TestCourseService_CreatorBecomesOwner(t *testing.T) {
	env := newTestEnv(t)

	course, err := env.svc.Course().Create(env.ctx, &CreateCourseRequest{Name: "  Databases ", CourseCode: "CS200"}, "owner")
	require.NoError(t, err)
	assert.Equal(t, "Databases", course.Name)
	assert.Equal(t, models.CourseRoleOwner, course.Role)

	members, err := env.svc.Course().ListMembers(env.ctx, course.ID, "owner")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "owner", members[0].UserID)

	list, err := env.svc.Course().List(env.ctx, repositories.CourseFilters{}, "owner")
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}

func TestCourseService_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Course().Create(env.ctx, &CreateCourseRequest{Name: "  "}, "owner")
	assert.NotNil(t, validationErrors(t, err).ByField("name"))

	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)
	_, err = env.svc.Course().Create(env.ctx, &CreateCourseRequest{Name: "X", StartDate: &start, EndDate: &end}, "owner")
	assert.NotNil(t, validationErrors(t, err).ByField("end_date"))

	_, err = env.svc.Course().Create(env.ctx, &CreateCourseRequest{Name: "A", CourseCode: "CS101"}, "owner")
	require.NoError(t, err)
	_, err = env.svc.Course().Create(env.ctx, &CreateCourseRequest{Name: "B", CourseCode: "CS101"}, "owner")
	assert.ErrorIs(t, err, ErrCourseDuplicateCode)
}

func TestCourseService_Permissions(t *testing.T) {
	env := newTestEnv(t)
	courseID := env.newCourse(t)

	_, err := env.svc.Course().Update(env.ctx, courseID, &UpdateCourseRequest{Name: strPtr("Renamed")}, "stu1")
	assert.True(t, IsUnauthorized(err))

	_, err = env.svc.Course().GetByID(env.ctx, courseID, "outsider")
	var permErr *PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, "outsider", permErr.UserID)

	assert.True(t, IsUnauthorized(env.svc.Course().Delete(env.ctx, courseID, "inst")))

	_, err = env.svc.Course().GetByID(env.ctx, 999, "owner")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	updated, err := env.svc.Course().Update(env.ctx, courseID, &UpdateCourseRequest{Name: strPtr("Renamed")}, "inst")
	require.NoError(t, err)
	assert.Equal(t, models.CourseRoleInstructor, updated.Role)

	got, err := env.svc.Course().GetByID(env.ctx, courseID, "stu1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, models.CourseRoleStudent, got.Role)

	require.NoError(t, env.svc.Course().Delete(env.ctx, courseID, "owner"))
	_, err = env.svc.Course().GetByID(env.ctx, courseID, "owner")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_MembershipRules(t *testing.T) {
	env := newTestEnv(t)
	courseID := env.newCourse(t)
	courses := env.svc.Course()

	_, err := courses.AddMember(env.ctx, courseID, &AddMemberRequest{UserID: "outsider", Role: models.CourseRoleOwner}, "owner")
	assert.True(t, IsBusinessRule(err))

	_, err = courses.AddMember(env.ctx, courseID, &AddMemberRequest{UserID: "stu1", Role: models.CourseRoleStudent}, "owner")
	assert.ErrorIs(t, err, ErrMemberExists)

	_, err = courses.AddMember(env.ctx, courseID, &AddMemberRequest{UserID: "ghost", Role: models.CourseRoleStudent}, "owner")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = courses.AddMember(env.ctx, courseID, &AddMemberRequest{UserID: "outsider", Role: models.CourseRoleStudent}, "stu1")
	assert.True(t, IsUnauthorized(err))

	assert.True(t, IsBusinessRule(courses.RemoveMember(env.ctx, courseID, "owner", "inst")))
	assert.True(t, IsBusinessRule(courses.UpdateMemberRole(env.ctx, courseID, "owner", &UpdateMemberRoleRequest{Role: models.CourseRoleStudent}, "inst")))
	assert.True(t, IsBusinessRule(courses.UpdateMemberRole(env.ctx, courseID, "stu1", &UpdateMemberRoleRequest{Role: models.CourseRoleOwner}, "owner")))

	require.NoError(t, courses.UpdateMemberRole(env.ctx, courseID, "stu2", &UpdateMemberRoleRequest{Role: models.CourseRoleInstructor}, "owner"))
	got, err := courses.GetByID(env.ctx, courseID, "stu2")
	require.NoError(t, err)
	assert.Equal(t, models.CourseRoleInstructor, got.Role)

	// a student may leave; the cached membership goes with it
	_, err = courses.GetByID(env.ctx, courseID, "stu1")
	require.NoError(t, err)
	require.NoError(t, courses.RemoveMember(env.ctx, courseID, "stu1", "stu1"))
	_, err = courses.GetByID(env.ctx, courseID, "stu1")
	assert.True(t, IsUnauthorized(err))
}

// ===== MILESTONES =====

func TestMilestoneService(t *testing.T) {
	env := newTestEnv(t)
	courseID := env.newCourse(t)
	otherID := env.newCourse(t)
	milestones := env.svc.Milestone()

	_, err := milestones.Create(env.ctx, courseID, &CreateMilestoneRequest{Name: "Week 1"}, "stu1")
	assert.True(t, IsUnauthorized(err))

	m, err := milestones.Create(env.ctx, courseID, &CreateMilestoneRequest{Name: "Week 1"}, "inst")
	require.NoError(t, err)

	list, err := milestones.List(env.ctx, courseID, "stu1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = milestones.GetByID(env.ctx, otherID, m.ID, "owner")
	assert.ErrorIs(t, err, ErrMilestoneNotFound)

	updated, err := milestones.Update(env.ctx, courseID, m.ID, &UpdateMilestoneRequest{Name: strPtr("Week one")}, "owner")
	require.NoError(t, err)
	assert.Equal(t, "Week one", updated.Name)

	list, err = milestones.List(env.ctx, courseID, "stu1")
	require.NoError(t, err)
	assert.Equal(t, "Week one", list[0].Name)

	require.NoError(t, milestones.Delete(env.ctx, courseID, m.ID, "inst"))
	list, err = milestones.List(env.ctx, courseID, "stu1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

// ===== GROUPS =====

func TestGroupService_Membership(t *testing.T) {
	env := newTestEnv(t)
	courseID := env.newCourse(t)
	groups := env.svc.Group()

	_, err := groups.Create(env.ctx, courseID, &CreateGroupRequest{Name: "Team", MemberIDs: []string{"stu1", "outsider"}}, "inst")
	assert.NotNil(t, validationErrors(t, err).ByField("member_ids.1"))

	g, err := groups.Create(env.ctx, courseID, &CreateGroupRequest{Name: "Team", MemberIDs: []string{"stu1", "stu1"}}, "inst")
	require.NoError(t, err)
	require.Len(t, g.Members, 1)

	_, err = groups.AddMember(env.ctx, g.ID, &AddGroupMemberRequest{UserID: "stu2"}, "stu1")
	assert.True(t, IsUnauthorized(err))

	got, err := groups.AddMember(env.ctx, g.ID, &AddGroupMemberRequest{UserID: "stu2"}, "stu2")
	require.NoError(t, err)
	assert.Len(t, got.Members, 2)

	_, err = groups.AddMember(env.ctx, g.ID, &AddGroupMemberRequest{UserID: "stu2"}, "inst")
	assert.ErrorIs(t, err, ErrGroupMemberExists)

	require.NoError(t, groups.RemoveMember(env.ctx, g.ID, "stu2", "stu2"))
	got, err = groups.GetByID(env.ctx, g.ID, "stu1")
	require.NoError(t, err)
	assert.Len(t, got.Members, 1)

	assert.ErrorIs(t, groups.RemoveMember(env.ctx, g.ID, "stu2", "inst"), ErrGroupMemberNotFound)
}
