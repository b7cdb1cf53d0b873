package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/interviewbuddy/internal/config"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

func testServices(t *testing.T) *services {
	t.Helper()
	observability.Discard()

	cfg := config.Default()
	cfg.UseMockLLM = true
	cfg.StorageBackend = "memory"
	cfg.Session.AdvanceDelay = 0
	cfg.Session.AutoRead = false

	svc, err := buildServices(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func practiceSpec() domain.InterviewSpec {
	return domain.InterviewSpec{
		Position:          "Site Reliability Engineer",
		Description:       "Keep the checkout platform fast and available.",
		YearsExperience:   4,
		TechStack:         []string{"Kubernetes", "Go"},
		InterviewType:     domain.InterviewMixed,
		NumberOfQuestions: 2,
	}
}

func TestPracticeSubmitsAfterLastQuestion(t *testing.T) {
	svc := testServices(t)

	in := strings.NewReader(strings.Join([]string{
		"submit",
		"a I start from the error budget",
		"next",
		"next",
		"a I would roll back first",
		"submit",
	}, "\n"))
	var out bytes.Buffer

	err := runPractice(context.Background(), svc, practiceIO{in: in, out: &out}, "u1", "", practiceSpec())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Question 1 of 2")
	assert.Contains(t, text, "Question 2 of 2")
	assert.Contains(t, text, "submit is only available on the last question")
	assert.Contains(t, text, "No next question.")
	assert.Contains(t, text, "Overall rating")

	dash, err := svc.interviews.Dashboard(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, dash.Attempted, 1)
	assert.NotNil(t, dash.Attempted[0].Score)
}

func TestPracticeQuitLeavesInterviewPending(t *testing.T) {
	svc := testServices(t)

	var out bytes.Buffer
	err := runPractice(context.Background(), svc, practiceIO{in: strings.NewReader("help\nbogus\nq\n"), out: &out}, "u1", "", practiceSpec())
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Unknown command "bogus"`)

	dash, err := svc.interviews.Dashboard(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, dash.Pending, 1)
	assert.Empty(t, dash.Attempted)
}

func TestPolicyFromConfig(t *testing.T) {
	p := policyFrom(config.Default().Retry)

	assert.Equal(t, 4, p.MaxAttempts())
	assert.Equal(t, 2, p.PrimaryAttempts)
	require.NotNil(t, p.Backoff)
	assert.Equal(t, "4s", p.Backoff(0).String())
	assert.Equal(t, "16s", p.Backoff(2).String())
}
