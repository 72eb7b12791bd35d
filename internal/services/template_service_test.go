package services

import (
	"testing"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/forms"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizField() models.FormField {
	return models.FormField{Type: models.FieldMcq, Label: "Q1", Choices: []string{"A", "B"}, Required: true, HasFeedback: true}
}

func (e *testEnv) newTemplate(t *testing.T, courseID uint, name string, st models.SubmissionType, published bool, fields ...models.FormField) *models.Template {
	t.Helper()
	tpl, err := e.svc.Template().Create(e.ctx, courseID, &CreateTemplateRequest{
		Name:           name,
		SubmissionType: st,
		IsPublished:    published,
		FormFields:     fields,
	}, "inst")
	require.NoError(t, err)
	return tpl
}

func TestTemplateService_CreateRejectsInvalidFields(t *testing.T) {
	env := newTestEnv(t)
	courseID := env.newCourse(t)

	_, err := env.svc.Template().Create(env.ctx, courseID, &CreateTemplateRequest{
		Name:           "Quiz",
		SubmissionType: models.SubmissionIndividual,
		FormFields:     []models.FormField{{Type: models.FieldMcq, Label: "Q1"}},
	}, "inst")
	assert.NotNil(t, validationErrors(t, err).ByField("form_fields.0.choices"))

	_, err = env.svc.Template().Create(env.ctx, courseID, &CreateTemplateRequest{
		Name:           "Empty",
		SubmissionType: models.SubmissionIndividual,
	}, "inst")
	assert.NotNil(t, validationErrors(t, err).ByField("form_fields"))

	_, err = env.svc.Template().Create(env.ctx, courseID, &CreateTemplateRequest{
		Name:           "Quiz",
		SubmissionType: "team",
		FormFields:     []models.FormField{quizField()},
	}, "inst")
	assert.NotNil(t, validationErrors(t, err).ByField("submission_type"))

	_, err = env.svc.Template().Create(env.ctx, courseID, &CreateTemplateRequest{
		Name:           "Quiz",
		SubmissionType: models.SubmissionIndividual,
		FormFields:     []models.FormField{quizField()},
	}, "stu1")
	assert.True(t, IsUnauthorized(err))
}

func TestTemplateService_DuplicateName(t *testing.T) {
	env := newTestEnv(t)
	courseID := env.newCourse(t)
	env.newTemplate(t, courseID, "Quiz", models.SubmissionIndividual, false, quizField())

	_, err := env.svc.Template().Create(env.ctx, courseID, &CreateTemplateRequest{
		Name:           "Quiz",
		SubmissionType: models.SubmissionIndividual,
		FormFields:     []models.FormField{quizField()},
	}, "inst")
	assert.ErrorIs(t, err, ErrTemplateDuplicateName)
}

func TestTemplateService_StudentsOnlySeePublished(t *testing.T) {
	env := newTestEnv(t)
	courseID := env.newCourse(t)
	draft := env.newTemplate(t, courseID, "Draft", models.SubmissionIndividual, false, quizField())
	env.newTemplate(t, courseID, "Quiz", models.SubmissionIndividual, true, quizField())

	staffView, err := env.svc.Template().List(env.ctx, courseID, "inst")
	require.NoError(t, err)
	assert.Len(t, staffView, 2)

	studentView, err := env.svc.Template().List(env.ctx, courseID, "stu1")
	require.NoError(t, err)
	require.Len(t, studentView, 1)
	assert.Equal(t, "Quiz", studentView[0].Name)

	_, err = env.svc.Template().GetByID(env.ctx, draft.ID, "stu1")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = env.svc.Template().Publish(env.ctx, draft.ID, true, "owner")
	require.NoError(t, err)
	studentView, err = env.svc.Template().List(env.ctx, courseID, "stu1")
	require.NoError(t, err)
	assert.Len(t, studentView, 2)
}

func TestTemplateService_PublishEmitsEvent(t *testing.T) {
	env := newTestEnv(t)
	courseID := env.newCourse(t)
	tpl := env.newTemplate(t, courseID, "Quiz", models.SubmissionIndividual, false, quizField())
	assert.Empty(t, env.events.GetPublishedEvents())

	published, err := env.svc.Template().Publish(env.ctx, tpl.ID, true, "inst")
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	evs := env.events.GetPublishedEvents()
	require.Len(t, evs, 1)
	assert.Equal(t, events.EventTemplatePublished, evs[0].Type)
	data, ok := evs[0].Data.(events.TemplatePublishedEvent)
	require.True(t, ok)
	assert.Equal(t, tpl.ID, data.TemplateID)
	assert.Equal(t, 1, data.FieldCount)

	// publishing again is a no-op
	_, err = env.svc.Template().Publish(env.ctx, tpl.ID, true, "inst")
	require.NoError(t, err)
	assert.Len(t, env.events.GetPublishedEvents(), 1)
}

func TestTemplateService_BuilderOperations(t *testing.T) {
	env := newTestEnv(t)
	courseID := env.newCourse(t)
	tpl := env.newTemplate(t, courseID, "Survey", models.SubmissionIndividual, false,
		models.FormField{Type: models.FieldText, Label: "Name"})
	templates := env.svc.Template()

	first := 0
	tpl, err := templates.AddField(env.ctx, tpl.ID, &AddFieldRequest{Field: quizField(), Index: &first}, "inst")
	require.NoError(t, err)
	require.Len(t, tpl.FormFields, 2)
	assert.Equal(t, models.FieldMcq, tpl.FormFields[0].Type)

	_, err = templates.AddField(env.ctx, tpl.ID, &AddFieldRequest{Field: models.FormField{Type: models.FieldMrq, Label: "Pick"}}, "inst")
	assert.NotNil(t, validationErrors(t, err).ByField("form_fields.2.choices"))

	tpl, err = templates.UpdateField(env.ctx, tpl.ID, 1, &forms.FieldPatch{Label: strPtr("Full name")}, "inst")
	require.NoError(t, err)
	assert.Equal(t, "Full name", tpl.FormFields[1].Label)

	_, err = templates.UpdateField(env.ctx, tpl.ID, 1, &forms.FieldPatch{Label: strPtr(" ")}, "inst")
	assert.NotNil(t, validationErrors(t, err).ByField("form_fields.1.label"))

	tpl, err = templates.ReorderFields(env.ctx, tpl.ID, &ReorderFieldsRequest{Order: []int{1, 0}}, "inst")
	require.NoError(t, err)
	assert.Equal(t, "Full name", tpl.FormFields[0].Label)
	assert.Equal(t, "Q1", tpl.FormFields[1].Label)

	tpl, err = templates.MoveField(env.ctx, tpl.ID, &MoveFieldRequest{From: 1, To: 0}, "inst")
	require.NoError(t, err)
	assert.Equal(t, "Q1", tpl.FormFields[0].Label)
	assert.Equal(t, "Full name", tpl.FormFields[1].Label)

	_, err = templates.MoveField(env.ctx, tpl.ID, &MoveFieldRequest{From: 0, To: 2}, "inst")
	assert.ErrorIs(t, err, ErrBadRequest)

	tpl, err = templates.ReorderFields(env.ctx, tpl.ID, &ReorderFieldsRequest{Order: []int{1, 0}}, "inst")
	require.NoError(t, err)

	_, err = templates.RemoveField(env.ctx, tpl.ID, 5, "inst")
	assert.ErrorIs(t, err, ErrBadRequest)

	tpl, err = templates.RemoveField(env.ctx, tpl.ID, 0, "inst")
	require.NoError(t, err)
	require.Len(t, tpl.FormFields, 1)

	_, err = templates.RemoveField(env.ctx, tpl.ID, 0, "inst")
	assert.True(t, IsBusinessRule(err))

	_, err = templates.AddField(env.ctx, tpl.ID, &AddFieldRequest{Field: quizField()}, "stu1")
	assert.True(t, IsUnauthorized(err))

	// reads see the persisted field list
	got, err := templates.GetByID(env.ctx, tpl.ID, "owner")
	require.NoError(t, err)
	require.Len(t, got.FormFields, 1)
	assert.Equal(t, "Q1", got.FormFields[0].Label)
}

func TestTemplateService_SubmissionView(t *testing.T) {
	env := newTestEnv(t)
	courseID := env.newCourse(t)
	tpl := env.newTemplate(t, courseID, "Quiz", models.SubmissionEither, true,
		quizField(),
		models.FormField{Type: models.FieldMrq, Label: "Q2", Choices: []string{"X", "Y"}},
		models.FormField{Type: models.FieldTextDisplay, Content: "Good luck"},
	)

	view, err := env.svc.Template().SubmissionView(env.ctx, tpl.ID, forms.SubmissionOverrides{}, "stu1")
	require.NoError(t, err)
	assert.Equal(t, "Quiz", view.Name)
	assert.Equal(t, models.SubmissionIndividual, view.SubmissionType)
	require.Len(t, view.FormResponseData, 3)
	assert.Equal(t, models.TextResponse(""), view.FormResponseData[0].Response)
	assert.Equal(t, models.ChoicesResponse(), view.FormResponseData[1].Response)
	assert.Nil(t, view.FormResponseData[2].Response)
}
