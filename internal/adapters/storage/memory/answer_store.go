package memory

import (
	"context"
	"sync"
	"time"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

// AnswerStore is an in-memory domain.AnswerStore.
type AnswerStore struct {
	mu      sync.RWMutex
	answers map[domain.InterviewID][]*domain.AnswerRating
	now     func() time.Time
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{
		answers: make(map[domain.InterviewID][]*domain.AnswerRating),
		now:     time.Now,
	}
}

// AppendAnswer saves a graded answer. Several answers for the same
// question are all kept.
func (s *AnswerStore) AppendAnswer(_ context.Context, ans *domain.AnswerRating) error {
	if ans == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if ans.CreatedAt.IsZero() {
		ans.CreatedAt = now
	}
	ans.UpdatedAt = now

	cp := *ans
	s.answers[ans.InterviewID] = append(s.answers[ans.InterviewID], &cp)
	return nil
}

// ListAnswersByInterview returns answers in the order they were recorded.
func (s *AnswerStore) ListAnswersByInterview(_ context.Context, interviewID domain.InterviewID) ([]*domain.AnswerRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.answers[interviewID]
	out := make([]*domain.AnswerRating, 0, len(src))
	for _, a := range src {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

// DeleteAnswersByInterview drops every answer of an interview.
func (s *AnswerStore) DeleteAnswersByInterview(_ context.Context, interviewID domain.InterviewID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.answers, interviewID)
	return nil
}
