package feedback

import (
	"context"

	"github.com/PabloGalante/interviewbuddy/internal/app/session"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

// Report is everything the feedback page shows for one interview.
type Report struct {
	Interview *domain.InterviewRecord
	Answers   []*domain.AnswerRating
	// Score is the stored score once attempted, otherwise the running mean.
	Score float64
}

// Service holds the logic of reading interview feedback.
type Service struct {
	interviews domain.InterviewStore
	answers    domain.AnswerStore
}

func NewService(interviews domain.InterviewStore, answers domain.AnswerStore) *Service {
	return &Service{interviews: interviews, answers: answers}
}

// Report loads the interview with its graded answers. An empty userID
// skips the ownership check.
func (s *Service) Report(ctx context.Context, userID domain.UserID, id domain.InterviewID) (*Report, error) {
	log := observability.LoggerFromContext(ctx).With("interview_id", id)

	rec, err := s.interviews.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != "" && rec.UserID != userID {
		return nil, domain.ErrNotFound
	}

	answers, err := s.answers.ListAnswersByInterview(ctx, id)
	if err != nil {
		log.Error("failed to list answers", "error", err)
		return nil, err
	}

	score := session.AggregateScore(answers)
	if rec.Score != nil {
		score = *rec.Score
	}

	log.Info("fetched feedback", "answers", len(answers))
	return &Report{Interview: rec, Answers: answers, Score: score}, nil
}
