package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	mu     sync.Mutex
	nextID uint
	clock  time.Time

	courses      map[uint]*models.Course
	members      map[uint]map[string]*models.CourseMember
	milestones   map[uint]*models.Milestone
	groups       map[uint]*models.Group
	groupMembers map[uint]map[string]bool
	templates    map[uint]*models.Template
	submissions  map[uint]*models.Submission
	comments     map[uint]*models.Comment
	users        map[string]*models.User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		clock:        time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		courses:      map[uint]*models.Course{},
		members:      map[uint]map[string]*models.CourseMember{},
		milestones:   map[uint]*models.Milestone{},
		groups:       map[uint]*models.Group{},
		groupMembers: map[uint]map[string]bool{},
		templates:    map[uint]*models.Template{},
		submissions:  map[uint]*models.Submission{},
		comments:     map[uint]*models.Comment{},
		users:        map[string]*models.User{},
	}
}

func (r *fakeRepository) id() uint {
	r.nextID++
	return r.nextID
}

// tick advances the fake clock so creation order is observable.
func (r *fakeRepository) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *fakeRepository) Course() repositories.CourseRepository { return fakeCourses{r} }
func (r *fakeRepository) CourseMember() repositories.CourseMemberRepository {
	return fakeCourseMembers{r}
}
func (r *fakeRepository) Milestone() repositories.MilestoneRepository   { return fakeMilestones{r} }
func (r *fakeRepository) Group() repositories.GroupRepository           { return fakeGroups{r} }
func (r *fakeRepository) Template() repositories.TemplateRepository     { return fakeTemplates{r} }
func (r *fakeRepository) Submission() repositories.SubmissionRepository { return fakeSubmissions{r} }
func (r *fakeRepository) Comment() repositories.CommentRepository       { return fakeComments{r} }
func (r *fakeRepository) User() repositories.UserRepository             { return fakeUsers{r} }

func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
func (r *fakeRepository) Ping(ctx context.Context) error { return nil }
func (r *fakeRepository) Close() error                   { return nil }

// ===== COURSES =====

type fakeCourses struct{ *fakeRepository }

func (f fakeCourses) Create(_ context.Context, _ *gorm.DB, c *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.id()
	c.CreatedAt = f.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.courses[c.ID] = &cp
	return nil
}

func (f fakeCourses) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f fakeCourses) Update(_ context.Context, _ *gorm.DB, c *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.courses[c.ID] = &cp
	return nil
}

func (f fakeCourses) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.courses, id)
	return nil
}

func (f fakeCourses) ListForUser(_ context.Context, _ *gorm.DB, userID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Course
	for id, c := range f.courses {
		if _, ok := f.members[id][userID]; !ok {
			continue
		}
		if filters.Query != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filters.Query)) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f fakeCourses) ExistsByCode(_ context.Context, _ *gorm.DB, code string, excludeID *uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.courses {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if strings.EqualFold(c.CourseCode, code) {
			return true, nil
		}
	}
	return false, nil
}

type fakeCourseMembers struct{ *fakeRepository }

func (f fakeCourseMembers) Add(_ context.Context, _ *gorm.DB, m *models.CourseMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[m.CourseID] == nil {
		f.members[m.CourseID] = map[string]*models.CourseMember{}
	}
	if _, ok := f.members[m.CourseID][m.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.CreatedAt = f.tick()
	cp := *m
	f.members[m.CourseID][m.UserID] = &cp
	return nil
}

func (f fakeCourseMembers) Get(_ context.Context, _ *gorm.DB, courseID uint, userID string) (*models.CourseMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[courseID][userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (f fakeCourseMembers) List(_ context.Context, _ *gorm.DB, courseID uint) ([]*models.CourseMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.CourseMember
	for _, m := range f.members[courseID] {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f fakeCourseMembers) UpdateRole(_ context.Context, _ *gorm.DB, courseID uint, userID string, role models.CourseRole) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[courseID][userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Role = role
	return nil
}

func (f fakeCourseMembers) Remove(_ context.Context, _ *gorm.DB, courseID uint, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.members[courseID][userID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.members[courseID], userID)
	return nil
}

// ===== MILESTONES =====

type fakeMilestones struct{ *fakeRepository }

func (f fakeMilestones) Create(_ context.Context, _ *gorm.DB, m *models.Milestone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.id()
	m.CreatedAt = f.tick()
	cp := *m
	f.milestones[m.ID] = &cp
	return nil
}

func (f fakeMilestones) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.milestones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (f fakeMilestones) Update(_ context.Context, _ *gorm.DB, m *models.Milestone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	f.milestones[m.ID] = &cp
	return nil
}

func (f fakeMilestones) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.milestones[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.milestones, id)
	return nil
}

func (f fakeMilestones) ListByCourse(_ context.Context, _ *gorm.DB, courseID uint) ([]*models.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Milestone
	for _, m := range f.milestones {
		if m.CourseID == courseID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===== GROUPS =====

type fakeGroups struct{ *fakeRepository }

func (f fakeGroups) Create(_ context.Context, _ *gorm.DB, g *models.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.ID = f.id()
	g.CreatedAt = f.tick()
	cp := *g
	cp.Members = nil
	f.groups[g.ID] = &cp
	f.groupMembers[g.ID] = map[string]bool{}
	return nil
}

func (f fakeGroups) withMembers(g *models.Group) *models.Group {
	cp := *g
	cp.Members = nil
	var users []string
	for u := range f.groupMembers[g.ID] {
		users = append(users, u)
	}
	sort.Strings(users)
	for _, u := range users {
		cp.Members = append(cp.Members, models.GroupMember{GroupID: g.ID, UserID: u})
	}
	return &cp
}

func (f fakeGroups) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.withMembers(g), nil
}

func (f fakeGroups) Update(_ context.Context, _ *gorm.DB, g *models.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *g
	cp.Members = nil
	f.groups[g.ID] = &cp
	return nil
}

func (f fakeGroups) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.groups, id)
	delete(f.groupMembers, id)
	return nil
}

func (f fakeGroups) ListByCourse(_ context.Context, _ *gorm.DB, courseID uint) ([]*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Group
	for _, g := range f.groups {
		if g.CourseID == courseID {
			out = append(out, f.withMembers(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeGroups) AddMember(_ context.Context, _ *gorm.DB, m *models.GroupMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	members, ok := f.groupMembers[m.GroupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if members[m.UserID] {
		return gorm.ErrDuplicatedKey
	}
	members[m.UserID] = true
	return nil
}

func (f fakeGroups) RemoveMember(_ context.Context, _ *gorm.DB, groupID uint, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.groupMembers[groupID][userID] {
		return gorm.ErrRecordNotFound
	}
	delete(f.groupMembers[groupID], userID)
	return nil
}

func (f fakeGroups) IsMember(_ context.Context, _ *gorm.DB, groupID uint, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groupMembers[groupID][userID], nil
}

func (f fakeGroups) GetUserGroupIDs(_ context.Context, _ *gorm.DB, courseID uint, userID string) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uint
	for id, g := range f.groups {
		if g.CourseID == courseID && f.groupMembers[id][userID] {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ===== TEMPLATES =====

type fakeTemplates struct{ *fakeRepository }

func (f fakeTemplates) Create(_ context.Context, _ *gorm.DB, t *models.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.id()
	t.CreatedAt = f.tick()
	cp := *t
	f.templates[t.ID] = &cp
	return nil
}

func (f fakeTemplates) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f fakeTemplates) Update(_ context.Context, _ *gorm.DB, t *models.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.UpdatedAt = f.tick()
	cp := *t
	f.templates[t.ID] = &cp
	return nil
}

func (f fakeTemplates) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.templates[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.templates, id)
	return nil
}

func (f fakeTemplates) ListByCourse(_ context.Context, _ *gorm.DB, courseID uint, filters repositories.TemplateFilters) ([]*models.Template, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Template
	for _, t := range f.templates {
		if t.CourseID != courseID || (filters.PublishedOnly && !t.IsPublished) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f fakeTemplates) ExistsByName(_ context.Context, _ *gorm.DB, courseID uint, name string, excludeID *uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, t := range f.templates {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if t.CourseID == courseID && t.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// ===== SUBMISSIONS =====

type fakeSubmissions struct{ *fakeRepository }

func (f fakeSubmissions) Create(_ context.Context, _ *gorm.DB, s *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.id()
	s.CreatedAt = f.tick()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	f.submissions[s.ID] = &cp
	return nil
}

func (f fakeSubmissions) withRelations(s *models.Submission) *models.Submission {
	cp := *s
	cp.CreatedBy = f.users[s.CreatedByID]
	cp.EditedBy = f.users[s.EditedByID]
	if s.GroupID != nil {
		cp.Group = f.groups[*s.GroupID]
	}
	return &cp
}

func (f fakeSubmissions) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.withRelations(s), nil
}

func (f fakeSubmissions) Update(_ context.Context, _ *gorm.DB, s *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.submissions[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.UpdatedAt = f.tick()
	cp := *s
	f.submissions[s.ID] = &cp
	return nil
}

func (f fakeSubmissions) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.submissions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.submissions, id)
	return nil
}

func (f fakeSubmissions) ListByCourse(_ context.Context, _ *gorm.DB, courseID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Submission
	for _, s := range f.submissions {
		switch {
		case s.CourseID != courseID,
			filters.TemplateID != nil && (s.TemplateID == nil || *s.TemplateID != *filters.TemplateID),
			filters.GroupID != nil && (s.GroupID == nil || *s.GroupID != *filters.GroupID),
			filters.CreatedByID != "" && s.CreatedByID != filters.CreatedByID,
			!filters.IncludeDraft && s.IsDraft:
			continue
		}
		if v := filters.VisibleTo; v != nil && s.CreatedByID != v.UserID && !containsID(v.GroupIDs, s.GroupID) {
			continue
		}
		out = append(out, f.withRelations(s))
	}

	asc := strings.EqualFold(filters.SortOrder, "asc")
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt) == asc
		}
		return out[i].ID < out[j].ID
	})

	total := int64(len(out))
	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			out = nil
		} else {
			out = out[filters.Offset:]
		}
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func containsID(ids []uint, id *uint) bool {
	if id == nil {
		return false
	}
	for _, x := range ids {
		if x == *id {
			return true
		}
	}
	return false
}

// ===== COMMENTS =====

type fakeComments struct{ *fakeRepository }

func (f fakeComments) Create(_ context.Context, _ *gorm.DB, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.id()
	c.CreatedAt = f.tick()
	cp := *c
	f.comments[c.ID] = &cp
	return nil
}

func (f fakeComments) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f fakeComments) Update(_ context.Context, _ *gorm.DB, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.comments[c.ID] = &cp
	return nil
}

func (f fakeComments) SoftDelete(_ context.Context, _ *gorm.DB, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.IsDeleted = true
	return nil
}

func (f fakeComments) list(match func(*models.Comment) bool) []*models.Comment {
	var out []*models.Comment
	for _, c := range f.comments {
		if match(c) {
			cp := *c
			cp.Commenter = f.users[c.CommenterID]
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FieldIndex != out[j].FieldIndex {
			return out[i].FieldIndex < out[j].FieldIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f fakeComments) ListBySubmission(_ context.Context, _ *gorm.DB, submissionID uint) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(c *models.Comment) bool { return c.SubmissionID == submissionID }), nil
}

func (f fakeComments) ListBySubmissions(_ context.Context, _ *gorm.DB, submissionIDs []uint) (map[uint][]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uint][]*models.Comment)
	for _, id := range submissionIDs {
		id := id
		if items := f.list(func(c *models.Comment) bool { return c.SubmissionID == id }); len(items) > 0 {
			out[id] = items
		}
	}
	return out, nil
}

// ===== USERS =====

type fakeUsers struct{ *fakeRepository }

func (f fakeUsers) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) GetByIDs(_ context.Context, _ *gorm.DB, ids []string) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, _ *gorm.DB, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeUsers) Upsert(_ context.Context, _ *gorm.DB, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) UpdateLastLogin(_ context.Context, _ *gorm.DB, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLoginAt = &at
	return nil
}
