package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

// InterviewStore is an in-memory domain.InterviewStore.
// It is NOT persistent and is only suitable for development / local mode.
type InterviewStore struct {
	mu         sync.RWMutex
	interviews map[domain.InterviewID]*domain.InterviewRecord
	watchers   map[domain.UserID]map[chan []*domain.InterviewRecord]struct{}
	now        func() time.Time
}

func NewInterviewStore() *InterviewStore {
	return &InterviewStore{
		interviews: make(map[domain.InterviewID]*domain.InterviewRecord),
		watchers:   make(map[domain.UserID]map[chan []*domain.InterviewRecord]struct{}),
		now:        time.Now,
	}
}

func (s *InterviewStore) CreateInterview(_ context.Context, rec *domain.InterviewRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.interviews[rec.ID]; exists {
		return fmt.Errorf("interview %s already exists", rec.ID)
	}

	now := s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = domain.StatusPending
	}

	s.interviews[rec.ID] = cloneRecord(rec)
	s.notifyLocked(rec.UserID)
	return nil
}

func (s *InterviewStore) UpdateInterview(_ context.Context, rec *domain.InterviewRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.interviews[rec.ID]
	if !ok {
		return domain.ErrNotFound
	}

	cur.Spec = rec.Spec
	cur.Questions = append([]domain.QAPair(nil), rec.Questions...)
	cur.UpdatedAt = s.now()
	rec.UpdatedAt = cur.UpdatedAt

	s.notifyLocked(cur.UserID)
	return nil
}

func (s *InterviewStore) GetInterview(_ context.Context, id domain.InterviewID) (*domain.InterviewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.interviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *InterviewStore) DeleteInterview(_ context.Context, id domain.InterviewID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.interviews[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.interviews, id)
	s.notifyLocked(rec.UserID)
	return nil
}

// ListInterviewsByUser returns the user's interviews, newest first.
func (s *InterviewStore) ListInterviewsByUser(_ context.Context, userID domain.UserID) ([]*domain.InterviewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(userID), nil
}

func (s *InterviewStore) MarkAttempted(_ context.Context, id domain.InterviewID, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.interviews[id]
	if !ok {
		return domain.ErrNotFound
	}
	if rec.Attempted() {
		return domain.ErrAlreadyAttempted
	}

	rec.Status = domain.StatusAttempted
	rec.Score = &score
	rec.UpdatedAt = s.now()

	s.notifyLocked(rec.UserID)
	return nil
}

// WatchInterviewsByUser sends the current list right away and again after
// every change. Slow readers only ever see the latest list.
func (s *InterviewStore) WatchInterviewsByUser(ctx context.Context, userID domain.UserID) (<-chan []*domain.InterviewRecord, error) {
	ch := make(chan []*domain.InterviewRecord, 1)

	s.mu.Lock()
	if s.watchers[userID] == nil {
		s.watchers[userID] = make(map[chan []*domain.InterviewRecord]struct{})
	}
	s.watchers[userID][ch] = struct{}{}
	ch <- s.listLocked(userID)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers[userID], ch)
		if len(s.watchers[userID]) == 0 {
			delete(s.watchers, userID)
		}
		close(ch)
		s.mu.Unlock()
	}()

	return ch, nil
}

func (s *InterviewStore) listLocked(userID domain.UserID) []*domain.InterviewRecord {
	out := []*domain.InterviewRecord{}
	for _, rec := range s.interviews {
		if rec.UserID == userID {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// notifyLocked must be called with s.mu held for writing.
func (s *InterviewStore) notifyLocked(userID domain.UserID) {
	subs := s.watchers[userID]
	if len(subs) == 0 {
		return
	}
	list := s.listLocked(userID)
	for ch := range subs {
		// drop a stale snapshot the reader has not picked up yet
		select {
		case <-ch:
		default:
		}
		ch <- list
	}
}

func cloneRecord(rec *domain.InterviewRecord) *domain.InterviewRecord {
	cp := *rec
	cp.Spec.TechStack = append([]string(nil), rec.Spec.TechStack...)
	cp.Questions = append([]domain.QAPair(nil), rec.Questions...)
	if rec.Score != nil {
		score := *rec.Score
		cp.Score = &score
	}
	return &cp
}
