package interview_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/interviewbuddy/internal/adapters/llm"
	"github.com/PabloGalante/interviewbuddy/internal/adapters/storage/memory"
	"github.com/PabloGalante/interviewbuddy/internal/app/feedback"
	"github.com/PabloGalante/interviewbuddy/internal/app/generation"
	"github.com/PabloGalante/interviewbuddy/internal/app/grading"
	"github.com/PabloGalante/interviewbuddy/internal/app/interview"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

type fixture struct {
	svc        *interview.Service
	feedback   *feedback.Service
	interviews *memory.InterviewStore
	answers    *memory.AnswerStore
}

func newFixture(t *testing.T, client domain.TextGenerator) fixture {
	t.Helper()

	runner := generation.NewRunner(client, generation.Models{Primary: "p", Fallback: "f"}, generation.DefaultPolicy()).
		WithSleep(func(context.Context, time.Duration) error { return nil })

	interviews := memory.NewInterviewStore()
	answers := memory.NewAnswerStore()

	return fixture{
		svc:        interview.NewService(generation.NewOrchestrator(runner), grading.NewGrader(runner), interviews, answers),
		feedback:   feedback.NewService(interviews, answers),
		interviews: interviews,
		answers:    answers,
	}
}

func spec() domain.InterviewSpec {
	return domain.InterviewSpec{
		Position:          "Platform Engineer",
		Description:       "Build internal developer tooling on GCP.",
		YearsExperience:   5,
		TechStack:         domain.ParseTechStack("Go, Terraform ,GCP"),
		InterviewType:     domain.InterviewTechnical,
		NumberOfQuestions: 3,
	}
}

func TestCreateRecordAndFeedback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, llm.NewMockLLM())

	rec, err := f.svc.Create(ctx, "u1", spec())
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Len(t, rec.Questions, 3)
	assert.Equal(t, domain.StatusPending, rec.Status)
	assert.Equal(t, []string{"Go", "Terraform", "GCP"}, rec.Spec.TechStack)

	ans, err := f.svc.RecordAnswer(ctx, interview.RecordAnswerInput{
		UserID:        "u1",
		InterviewID:   rec.ID,
		QuestionIndex: 1,
		UserAnswer:    "I split the work into small reviewed modules.",
	})
	require.NoError(t, err)
	assert.Equal(t, rec.Questions[1].Question, ans.Question)
	assert.Equal(t, rec.Questions[1].Answer, ans.CorrectAnswer)
	assert.NotEmpty(t, ans.Feedback)

	report, err := f.feedback.Report(ctx, "u1", rec.ID)
	require.NoError(t, err)
	require.Len(t, report.Answers, 1)
	assert.Equal(t, ans.Rating, report.Score)

	_, err = f.feedback.Report(ctx, "someone-else", rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.Create(ctx, "u1", spec())
	assert.True(t, domain.IsGenerationKind(err, domain.KindConfiguration))

	list, err := f.interviews.ListInterviewsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	bad := spec()
	bad.InterviewType = "panel"
	_, err = newFixture(t, llm.NewMockLLM()).svc.Create(ctx, "u1", bad)
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestUpdateKeepsStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, llm.NewMockLLM())

	rec, err := f.svc.Create(ctx, "u1", spec())
	require.NoError(t, err)
	require.NoError(t, f.interviews.MarkAttempted(ctx, rec.ID, 7))

	edited := spec()
	edited.NumberOfQuestions = 5
	edited.Position = "Staff Platform Engineer"

	updated, err := f.svc.Update(ctx, "u1", rec.ID, edited)
	require.NoError(t, err)
	assert.Len(t, updated.Questions, 5)

	got, err := f.svc.Get(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Staff Platform Engineer", got.Spec.Position)
	assert.True(t, got.Attempted())
	assert.Equal(t, 7.0, *got.Score)

	_, err = f.svc.Update(ctx, "u2", rec.ID, edited)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboardAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, llm.NewMockLLM())

	first, err := f.svc.Create(ctx, "u1", spec())
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, "u1", spec())
	require.NoError(t, err)
	require.NoError(t, f.interviews.MarkAttempted(ctx, first.ID, 5))

	dash, err := f.svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, dash.Pending, 1)
	require.Len(t, dash.Attempted, 1)
	assert.Equal(t, second.ID, dash.Pending[0].ID)

	_, err = f.svc.RecordAnswer(ctx, interview.RecordAnswerInput{UserID: "u1", InterviewID: first.ID, UserAnswer: "An answer."})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, "u2", first.ID), domain.ErrNotFound)
	require.NoError(t, f.svc.Delete(ctx, "u1", first.ID))

	answers, err := f.answers.ListAnswersByInterview(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)

	dash, err = f.svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, dash.Attempted)
	assert.Len(t, dash.Pending, 1)
}

func TestRecordAnswerRejectsBadIndex(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, llm.NewMockLLM())

	rec, err := f.svc.Create(ctx, "u1", spec())
	require.NoError(t, err)

	_, err = f.svc.RecordAnswer(ctx, interview.RecordAnswerInput{UserID: "u1", InterviewID: rec.ID, QuestionIndex: 3, UserAnswer: "x"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "questionIndex")
}

func TestWatchStreamsDashboards(t *testing.T) {
	f := newFixture(t, llm.NewMockLLM())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := f.svc.Watch(ctx, "u1")
	require.NoError(t, err)

	initial := <-ch
	assert.Empty(t, initial.Pending)

	_, err = f.svc.Create(context.Background(), "u1", spec())
	require.NoError(t, err)

	select {
	case d := <-ch:
		assert.Len(t, d.Pending, 1)
	case <-time.After(time.Second):
		t.Fatal("no dashboard after create")
	}
}
