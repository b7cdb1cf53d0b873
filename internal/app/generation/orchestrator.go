package generation

import (
	"context"
	"time"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
	"github.com/PabloGalante/interviewbuddy/internal/validator"
)

// Orchestrator turns an InterviewSpec into a question/answer list.
type Orchestrator struct {
	runner *Runner
}

func NewOrchestrator(runner *Runner) *Orchestrator {
	return &Orchestrator{runner: runner}
}

// Runner exposes the delivery driver so other AI use cases share its policy.
func (o *Orchestrator) Runner() *Runner {
	return o.runner
}

// GenerateQuestions validates spec, delivers the prompt and parses the answer.
// Failures are *domain.ValidationError or *domain.GenerationError; no
// partial result is ever returned.
func (o *Orchestrator) GenerateQuestions(ctx context.Context, spec domain.InterviewSpec) ([]domain.QAPair, error) {
	if err := validator.ValidateSpec(spec); err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With(
		"position", spec.Position,
		"interview_type", spec.InterviewType,
		"requested", spec.NumberOfQuestions,
	)
	log.Info("generating interview questions")
	start := time.Now()

	if o.runner == nil {
		return nil, &domain.GenerationError{Kind: domain.KindConfiguration, Message: "AI client not configured"}
	}

	raw, err := o.runner.Run(ctx, BuildQuestionPrompt(spec))
	if err != nil {
		log.Error("question generation failed", "error", err)
		return nil, err
	}

	pairs, err := ParseQuestions(raw)
	if err != nil {
		log.Error("could not parse generated questions", "error", err)
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, parseError("response contained no questions", nil)
	}

	// The model does not always honour the requested count.
	if len(pairs) != spec.NumberOfQuestions {
		log.Warn("question count differs from request", "received", len(pairs))
	}

	log.Info("questions generated",
		"received", len(pairs),
		"elapsed_ms", time.Since(start).Milliseconds())
	return pairs, nil
}
