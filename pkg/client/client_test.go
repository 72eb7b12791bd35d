package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAPI is a tiny in-memory course API that counts reads per route.
type fakeAPI struct {
	mu        sync.Mutex
	hits      map[string]int
	templates []*models.Template
	subs      map[uint]*models.Submission
	token     string
	expired   bool
	// failReads makes the next template list reads fail with a 500
	failReads int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		hits:  map[string]int{},
		token: "tok",
		subs: map[uint]*models.Submission{
			1: {ID: 1, CourseID: 5, Name: "first"},
			2: {ID: 2, CourseID: 5, Name: "second"},
		},
	}
}

func (f *fakeAPI) count(c *gin.Context) {
	f.mu.Lock()
	f.hits[c.Request.Method+" "+c.FullPath()]++
	f.mu.Unlock()
}

func (f *fakeAPI) hitsFor(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *fakeAPI) expire() {
	f.mu.Lock()
	f.expired = true
	f.mu.Unlock()
}

func (f *fakeAPI) isExpired() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expired
}

func (f *fakeAPI) router() *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		f.count(c)
		if f.isExpired() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Session expired", "code": "session_expired"})
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+f.token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing bearer token", "code": "unauthorized"})
			return
		}
	})

	api.GET("/courses/:course_id", func(c *gin.Context) {
		c.JSON(http.StatusOK, services.CourseResponse{Course: &models.Course{ID: 5, Name: "Algorithms"}, Role: models.CourseRoleInstructor})
	})
	api.PUT("/courses/:course_id", func(c *gin.Context) {
		c.JSON(http.StatusOK, services.CourseResponse{Course: &models.Course{ID: 5, Name: "Algorithms II"}, Role: models.CourseRoleInstructor})
	})

	api.GET("/courses/:course_id/templates", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failReads > 0 {
			f.failReads--
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Database unavailable", "code": "internal_error"})
			return
		}
		c.JSON(http.StatusOK, f.templates)
	})
	api.POST("/courses/:course_id/templates", func(c *gin.Context) {
		var req services.CreateTemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "code": "bad_request"})
			return
		}
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Validation failed",
				"code":    "validation_failed",
				"details": []gin.H{{"field": "name", "message": "is required"}},
			})
			return
		}
		if req.Name == "Quiz" {
			c.JSON(http.StatusConflict, gin.H{"message": "Template name already exists", "code": "conflict"})
			return
		}
		f.mu.Lock()
		t := &models.Template{ID: uint(len(f.templates) + 1), CourseID: 5, Name: req.Name}
		f.templates = append(f.templates, t)
		f.mu.Unlock()
		c.JSON(http.StatusCreated, t)
	})

	api.GET("/courses/:course_id/submissions", func(c *gin.Context) {
		c.JSON(http.StatusOK, services.SubmissionListResponse{
			Submissions: []*models.Submission{f.subs[1], f.subs[2]},
			Total:       2,
		})
	})
	api.GET("/submissions/:submission_id", func(c *gin.Context) {
		if c.Param("submission_id") == "1" {
			c.JSON(http.StatusOK, f.subs[1])
			return
		}
		c.JSON(http.StatusOK, f.subs[2])
	})
	api.PUT("/submissions/:submission_id", func(c *gin.Context) {
		c.JSON(http.StatusOK, f.subs[1])
	})

	api.GET("/courses/:course_id/submissions/export", func(c *gin.Context) {
		if c.Query("format") != "zip" || c.Query("include_draft") != "true" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unexpected query", "code": "bad_request"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="Algorithms submissions.zip"`)
		c.Data(http.StatusOK, "application/zip", []byte("PK"))
	})

	r.GET("/broken", func(c *gin.Context) {
		c.String(http.StatusBadGateway, "bad gateway\n")
	})
	return r
}

func newTestClient(t *testing.T, api *fakeAPI, cfg Config) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api.router())
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL + "/api/v1"
	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Sessions().Save(Session{Token: api.token}))
	return c, srv
}

func TestNewRequiresBaseURL(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "not a url"})
	assert.Error(t, err)

	t.Setenv(EnvBaseURL, "http://localhost:8080/api/v1/")
	c, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/courses", c.endpoint("/courses", nil))
}

func TestReadsAreCachedUntilInvalidated(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestClient(t, api, Config{})
	ctx := context.Background()

	course, err := c.GetCourse(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", course.Name)
	assert.Equal(t, models.CourseRoleInstructor, course.Role)

	_, err = c.GetCourse(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, api.hitsFor("GET /api/v1/courses/:course_id"))

	name := "Algorithms II"
	_, err = c.UpdateCourse(ctx, 5, &services.UpdateCourseRequest{Name: &name})
	require.NoError(t, err)

	_, err = c.GetCourse(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, api.hitsFor("GET /api/v1/courses/:course_id"))
}

func TestWatchRefetchesAfterCreate(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestClient(t, api, Config{})
	ctx := context.Background()

	var seen [][]*models.Template
	sub := Watch(ctx, c, c.TemplatesQuery(5), func(ts []*models.Template, err error) {
		require.NoError(t, err)
		seen = append(seen, ts)
	})
	defer sub.Close()

	require.Len(t, seen, 1)
	assert.Empty(t, seen[0])

	_, err := c.CreateTemplate(ctx, 5, &services.CreateTemplateRequest{Name: "Survey", SubmissionType: models.SubmissionIndividual})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	require.Len(t, seen[1], 1)
	assert.Equal(t, "Survey", seen[1][0].Name)

	sub.Close()
	_, err = c.CreateTemplate(ctx, 5, &services.CreateTemplateRequest{Name: "Retro", SubmissionType: models.SubmissionIndividual})
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestWatchRecoversAfterFailedFirstFetch(t *testing.T) {
	api := newFakeAPI()
	api.failReads = 1
	c, _ := newTestClient(t, api, Config{})
	ctx := context.Background()

	var errs []error
	var seen [][]*models.Template
	sub := Watch(ctx, c, c.TemplatesQuery(5), func(ts []*models.Template, err error) {
		errs = append(errs, err)
		seen = append(seen, ts)
	})
	defer sub.Close()

	require.Len(t, errs, 1)
	var apiErr *APIError
	require.ErrorAs(t, errs[0], &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)

	_, err := c.CreateTemplate(ctx, 5, &services.CreateTemplateRequest{Name: "Survey", SubmissionType: models.SubmissionIndividual})
	require.NoError(t, err)

	require.Len(t, errs, 2)
	require.NoError(t, errs[1])
	require.Len(t, seen[1], 1)
	assert.Equal(t, "Survey", seen[1][0].Name)
	assert.Equal(t, 2, api.hitsFor("GET /api/v1/courses/:course_id/templates"))
}

func TestUpdateSubmissionRefreshesOnlyDependents(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestClient(t, api, Config{})
	ctx := context.Background()

	calls := map[string]int{}
	watch := func(name string, q Query[*models.Submission]) {
		sub := Watch(ctx, c, q, func(*models.Submission, error) { calls[name]++ })
		t.Cleanup(sub.Close)
	}
	watch("first", c.SubmissionQuery(1))
	watch("second", c.SubmissionQuery(2))
	list := Watch(ctx, c, c.SubmissionsQuery(5, services.ListSubmissionsRequest{}), func(*services.SubmissionListResponse, error) {
		calls["list"]++
	})
	defer list.Close()

	_, err := c.UpdateSubmission(ctx, 1, &services.UpdateSubmissionRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, calls["first"])
	assert.Equal(t, 1, calls["second"])
	// the list carries every item's tag
	assert.Equal(t, 2, calls["list"])
	assert.Equal(t, 3, api.hitsFor("GET /api/v1/submissions/:submission_id"))
}

func TestSessionExpiry(t *testing.T) {
	api := newFakeAPI()
	expired := 0
	c, _ := newTestClient(t, api, Config{OnSessionExpired: func() { expired++ }})
	ctx := context.Background()

	_, err := c.GetCourse(ctx, 5)
	require.NoError(t, err)

	refetched := 0
	sub := Watch(ctx, c, c.SubmissionQuery(1), func(*models.Submission, error) { refetched++ })
	defer sub.Close()

	api.expire()
	_, err = c.ListTemplates(ctx, 5)
	require.ErrorIs(t, err, ErrSessionExpired)

	assert.Equal(t, 1, expired)
	assert.Nil(t, c.Sessions().Current())
	// the reset told watchers to refetch
	assert.Equal(t, 2, refetched)

	// the cached course is gone with the reset
	_, err = c.GetCourse(ctx, 5)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, expired)
	assert.Equal(t, msgExpired, UserMessage(err))
}

func TestErrorTaxonomy(t *testing.T) {
	api := newFakeAPI()
	c, srv := newTestClient(t, api, Config{})
	ctx := context.Background()

	_, err := c.CreateTemplate(ctx, 5, &services.CreateTemplateRequest{SubmissionType: models.SubmissionIndividual})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.NotNil(t, verrs.ByField("name"))
	assert.Equal(t, "is required", verrs.ByField("name").Message)
	assert.Equal(t, "name is required", UserMessage(err))

	_, err = c.CreateTemplate(ctx, 5, &services.CreateTemplateRequest{Name: "Quiz", SubmissionType: models.SubmissionIndividual})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "conflict", apiErr.Code)
	assert.Equal(t, "Template name already exists", UserMessage(err))

	broken, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	err = broken.do(ctx, http.MethodGet, "/broken", nil, nil, nil)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "bad gateway", apiErr.Detail)

	srv.Close()
	_, err = c.ListTemplates(ctx, 5)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, msgNoConnection, UserMessage(err))

	assert.Equal(t, msgUnknown, UserMessage(errors.New("boom")))
	assert.Equal(t, msgUnknown, UserMessage(&APIError{Status: http.StatusInternalServerError}))
	assert.Empty(t, UserMessage(nil))
}

func TestExportDownload(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestClient(t, api, Config{})

	d, err := c.Export(context.Background(), 5, models.ExportRequest{Format: models.ExportZip, IncludeDraft: true})
	require.NoError(t, err)
	assert.Equal(t, "Algorithms submissions.zip", d.Filename)
	assert.Equal(t, "application/zip", d.ContentType)
	assert.Equal(t, []byte("PK"), d.Data)
}

func TestSessionsRememberMe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course", "session.json")

	s := NewSessions(path)
	assert.Nil(t, s.Current())

	require.NoError(t, s.Save(Session{Token: "abc", User: &models.User{ID: "u1"}, RememberMe: true}))
	_, err := os.Stat(path)
	require.NoError(t, err)

	restored := NewSessions(path).Current()
	require.NotNil(t, restored)
	assert.Equal(t, "abc", restored.Token)
	assert.Equal(t, "u1", restored.User.ID)
	assert.False(t, restored.SignedInAt.IsZero())

	require.NoError(t, s.Save(Session{Token: "xyz"}))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, "xyz", s.Current().Token)
	assert.Nil(t, NewSessions(path).Current())

	require.NoError(t, s.Clear())
	assert.Nil(t, s.Current())

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	assert.Nil(t, NewSessions(path).Current())
}

func TestLogoutDropsCache(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestClient(t, api, Config{})
	ctx := context.Background()

	_, err := c.GetCourse(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, c.Logout(ctx))
	assert.Nil(t, c.Sessions().Current())

	_, err = c.GetCourse(ctx, 5)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, 2, api.hitsFor("GET /api/v1/courses/:course_id"))
}
