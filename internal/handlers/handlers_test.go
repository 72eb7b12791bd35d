package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]error

func (v stubVerifier) Verify(token string) (*services.Identity, error) {
	err, known := v[token]
	if !known {
		return nil, errors.New("signature is invalid")
	}
	if err != nil {
		return nil, err
	}
	return &services.Identity{UserID: "u-" + token, FullName: "User " + token}, nil
}

type stubUsers struct{}

func (stubUsers) Sync(_ context.Context, identity *services.Identity) (*models.User, error) {
	return &models.User{ID: identity.UserID, FullName: identity.FullName}, nil
}

func (stubUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if id == "u-ghost" {
		return nil, services.ErrUserNotFound
	}
	return &models.User{ID: id, FullName: "Known"}, nil
}

type stubTemplates struct {
	services.TemplateService
	err error
}

func (s stubTemplates) GetByID(_ context.Context, id uint, _ string) (*models.Template, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Template{ID: id, Name: "Quiz"}, nil
}

type stubExports struct {
	services.ExportService
	got *models.ExportRequest
}

func (s *stubExports) ExportSubmissions(_ context.Context, _ uint, req *models.ExportRequest, _ string) (*services.ExportResult, error) {
	s.got = req
	return &services.ExportResult{Filename: "Algorithms submissions.xlsx", ContentType: services.ContentTypeXlsx, Data: []byte("PK")}, nil
}

type stubServices struct {
	templates services.TemplateService
	exports   services.ExportService
}

func (s stubServices) Course() services.CourseService         { return nil }
func (s stubServices) Milestone() services.MilestoneService   { return nil }
func (s stubServices) Group() services.GroupService           { return nil }
func (s stubServices) Template() services.TemplateService     { return s.templates }
func (s stubServices) Submission() services.SubmissionService { return nil }
func (s stubServices) Comment() services.CommentService       { return nil }
func (s stubServices) Export() services.ExportService         { return s.exports }
func (s stubServices) User() services.UserService             { return stubUsers{} }

var testTokens = stubVerifier{
	"alice":   nil,
	"expired": jwt.NewValidationError("token is expired", jwt.ValidationErrorExpired),
}

func newTestRouter(svc stubServices) *gin.Engine {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := gin.New()
	NewHandlerManager(svc, testTokens, logger).SetupRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(stubServices{})

	w := doRequest(router, http.MethodGet, "/api/v1/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, CodeUnauthorized, decodeError(t, w).Code)

	w = doRequest(router, http.MethodGet, "/api/v1/me", "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, CodeUnauthorized, decodeError(t, w).Code)

	w = doRequest(router, http.MethodGet, "/api/v1/me", "expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, CodeSessionExpired, decodeError(t, w).Code)

	w = doRequest(router, http.MethodGet, "/api/v1/me", "alice")
	require.Equal(t, http.StatusOK, w.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "u-alice", user.ID)

	w = doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc"} {
		_, ok := bearerToken(header)
		assert.False(t, ok, header)
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", services.ValidationErrors{*services.NewValidationError("form_fields.0.label", "is required", "")}, http.StatusBadRequest, CodeValidation},
		{"bad request", fmt.Errorf("%w: field index out of range", services.ErrBadRequest), http.StatusBadRequest, CodeBadRequest},
		{"unauthenticated", services.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"permission", services.NewPermissionError("u-alice", 1, "course", "update", "staff only"), http.StatusForbidden, CodeForbidden},
		{"access denied", services.ErrSubmissionAccessDenied, http.StatusForbidden, CodeForbidden},
		{"not found", services.ErrTemplateNotFound, http.StatusNotFound, CodeNotFound},
		{"conflict", services.ErrTemplateDuplicateName, http.StatusConflict, CodeConflict},
		{"not published", services.ErrTemplateNotPublished, http.StatusConflict, CodeConflict},
		{"business rule", services.NewBusinessRuleError("min_fields", "a template needs at least one field", nil), http.StatusUnprocessableEntity, CodeBusinessRule},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(stubServices{templates: stubTemplates{err: tt.err}})
			w := doRequest(router, http.MethodGet, "/api/v1/templates/7", "alice")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestValidationDetailsCarryPaths(t *testing.T) {
	err := services.ValidationErrors{*services.NewValidationError("form_response_data.0.response", "is required", "")}
	router := newTestRouter(stubServices{templates: stubTemplates{err: err}})

	w := doRequest(router, http.MethodGet, "/api/v1/templates/7", "alice")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Details []services.ValidationError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "form_response_data.0.response", resp.Details[0].Field)
}

func TestInvalidIDParam(t *testing.T) {
	router := newTestRouter(stubServices{templates: stubTemplates{}})

	w := doRequest(router, http.MethodGet, "/api/v1/templates/abc", "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/templates/3", "alice")
	require.Equal(t, http.StatusOK, w.Code)
	var tpl models.Template
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tpl))
	assert.Equal(t, uint(3), tpl.ID)
}

func TestExportDownload(t *testing.T) {
	exports := &stubExports{}
	router := newTestRouter(stubServices{exports: exports})

	w := doRequest(router, http.MethodGet, "/api/v1/courses/4/submissions/export?format=xlsx&include_draft=true&template_id=9", "alice")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.ContentTypeXlsx, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Algorithms submissions.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", w.Body.String())

	require.NotNil(t, exports.got)
	assert.Equal(t, models.ExportXlsx, exports.got.Format)
	assert.True(t, exports.got.IncludeDraft)
	require.NotNil(t, exports.got.TemplateID)
	assert.Equal(t, uint(9), *exports.got.TemplateID)
}
