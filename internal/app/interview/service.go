package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/interviewbuddy/internal/app/grading"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

// QuestionGenerator is the part of the generation orchestrator the
// service needs.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, spec domain.InterviewSpec) ([]domain.QAPair, error)
}

// AnswerGrader rates one recorded answer.
type AnswerGrader interface {
	Grade(ctx context.Context, in grading.Input) (grading.Grade, error)
}

type Service struct {
	generator  QuestionGenerator
	grader     AnswerGrader
	interviews domain.InterviewStore
	answers    domain.AnswerStore
	now        func() time.Time
	newID      func() string
}

func NewService(
	generator QuestionGenerator,
	grader AnswerGrader,
	interviews domain.InterviewStore,
	answers domain.AnswerStore,
) *Service {
	return &Service{
		generator:  generator,
		grader:     grader,
		interviews: interviews,
		answers:    answers,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Create generates questions for spec and stores a pending interview.
// Nothing is stored when generation fails.
func (s *Service) Create(ctx context.Context, userID domain.UserID, spec domain.InterviewSpec) (*domain.InterviewRecord, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)
	log.Info("creating interview", "position", spec.Position)

	questions, err := s.generator.GenerateQuestions(ctx, spec)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := &domain.InterviewRecord{
		ID:        domain.InterviewID(s.newID()),
		UserID:    userID,
		Spec:      spec,
		Questions: questions,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.interviews.CreateInterview(ctx, rec); err != nil {
		log.Error("failed to store interview", "error", err)
		return nil, err
	}

	log.Info("interview created", "interview_id", rec.ID, "questions", len(rec.Questions))
	return rec, nil
}

// Update regenerates the questions from an edited spec. Status and score
// are kept.
func (s *Service) Update(ctx context.Context, userID domain.UserID, id domain.InterviewID, spec domain.InterviewSpec) (*domain.InterviewRecord, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID, "interview_id", id)

	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.generator.GenerateQuestions(ctx, spec)
	if err != nil {
		return nil, err
	}

	rec.Spec = spec
	rec.Questions = questions
	rec.UpdatedAt = s.now()
	if err := s.interviews.UpdateInterview(ctx, rec); err != nil {
		log.Error("failed to update interview", "error", err)
		return nil, err
	}

	log.Info("interview regenerated", "questions", len(questions))
	return rec, nil
}

// Get returns the interview when it belongs to userID. An empty userID
// skips the ownership check.
func (s *Service) Get(ctx context.Context, userID domain.UserID, id domain.InterviewID) (*domain.InterviewRecord, error) {
	return s.owned(ctx, userID, id)
}

// Dashboard lists the user's interviews split into pending and attempted.
type Dashboard struct {
	Pending   []*domain.InterviewRecord
	Attempted []*domain.InterviewRecord
}

func (s *Service) Dashboard(ctx context.Context, userID domain.UserID) (*Dashboard, error) {
	list, err := s.interviews.ListInterviewsByUser(ctx, userID)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to list interviews", "user_id", userID, "error", err)
		return nil, err
	}
	pending, attempted := domain.PartitionByStatus(list)
	return &Dashboard{Pending: pending, Attempted: attempted}, nil
}

// Watch streams the dashboard every time one of the user's interviews changes.
func (s *Service) Watch(ctx context.Context, userID domain.UserID) (<-chan *Dashboard, error) {
	src, err := s.interviews.WatchInterviewsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(chan *Dashboard)
	go func() {
		defer close(out)
		for list := range src {
			pending, attempted := domain.PartitionByStatus(list)
			select {
			case out <- &Dashboard{Pending: pending, Attempted: attempted}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Delete removes the interview and its recorded answers.
func (s *Service) Delete(ctx context.Context, userID domain.UserID, id domain.InterviewID) error {
	log := observability.LoggerFromContext(ctx).With("user_id", userID, "interview_id", id)

	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.answers.DeleteAnswersByInterview(ctx, id); err != nil {
		log.Error("failed to delete answers", "error", err)
		return err
	}
	if err := s.interviews.DeleteInterview(ctx, id); err != nil {
		log.Error("failed to delete interview", "error", err)
		return err
	}

	log.Info("interview deleted")
	return nil
}

type RecordAnswerInput struct {
	UserID        domain.UserID
	InterviewID   domain.InterviewID
	QuestionIndex int
	UserAnswer    string
}

// RecordAnswer grades the transcript of a spoken answer and stores it.
func (s *Service) RecordAnswer(ctx context.Context, in RecordAnswerInput) (*domain.AnswerRating, error) {
	log := observability.LoggerFromContext(ctx).With(
		"user_id", in.UserID,
		"interview_id", in.InterviewID,
		"question_index", in.QuestionIndex,
	)

	rec, err := s.owned(ctx, in.UserID, in.InterviewID)
	if err != nil {
		return nil, err
	}
	if in.QuestionIndex < 0 || in.QuestionIndex >= len(rec.Questions) {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"questionIndex": fmt.Sprintf("questionIndex must be between 0 and %d", len(rec.Questions)-1),
		}}
	}

	q := rec.Questions[in.QuestionIndex]
	grade, err := s.grader.Grade(ctx, grading.Input{
		Question:      q.Question,
		CorrectAnswer: q.Answer,
		UserAnswer:    in.UserAnswer,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	ans := &domain.AnswerRating{
		ID:            domain.AnswerID(s.newID()),
		InterviewID:   rec.ID,
		UserID:        in.UserID,
		QuestionIndex: in.QuestionIndex,
		Question:      q.Question,
		CorrectAnswer: q.Answer,
		UserAnswer:    in.UserAnswer,
		Feedback:      grade.Feedback,
		Rating:        grade.Rating,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.answers.AppendAnswer(ctx, ans); err != nil {
		log.Error("failed to store answer", "error", err)
		return nil, err
	}

	log.Info("answer recorded", "rating", ans.Rating)
	return ans, nil
}

func (s *Service) owned(ctx context.Context, userID domain.UserID, id domain.InterviewID) (*domain.InterviewRecord, error) {
	rec, err := s.interviews.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	// other users' interviews look missing
	if userID != "" && rec.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}
