package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PabloGalante/interviewbuddy/internal/adapters/storage/memory"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

// manualTimer holds scheduled callbacks until the test fires them.
type manualTimer struct {
	mu      sync.Mutex
	pending []*scheduled
}

type scheduled struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (m *manualTimer) afterFunc(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &scheduled{d: d, f: f}
	m.pending = append(m.pending, s)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		was := !s.stopped
		s.stopped = true
		return was
	}
}

// fire runs every callback that was not stopped.
func (m *manualTimer) fire() int {
	m.mu.Lock()
	due := m.pending
	m.pending = nil
	m.mu.Unlock()

	n := 0
	for _, s := range due {
		if !s.stopped {
			s.f()
			n++
		}
	}
	return n
}

func (m *manualTimer) stoppedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.pending {
		if s.stopped {
			n++
		}
	}
	return n
}

// fakeSpeaker plays until cancelled.
type fakeSpeaker struct {
	mu        sync.Mutex
	voices    []domain.Voice
	spoken    []domain.Utterance
	cancelled int
}

func (s *fakeSpeaker) Voices() []domain.Voice { return s.voices }

func (s *fakeSpeaker) Speak(ctx context.Context, u domain.Utterance) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, u)
	s.mu.Unlock()

	<-ctx.Done()

	s.mu.Lock()
	s.cancelled++
	s.mu.Unlock()
	return ctx.Err()
}

func (s *fakeSpeaker) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.spoken))
	for _, u := range s.spoken {
		out = append(out, u.Text)
	}
	return out
}

func (s *fakeSpeaker) cancelledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

type fakeScreen struct {
	mu            sync.Mutex
	enters, exits int
	err           error
}

func (s *fakeScreen) RequestFullScreen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enters++
	return s.err
}

func (s *fakeScreen) ExitFullScreen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exits++
	return s.err
}

// failingInterviews refuses to save scores.
type failingInterviews struct {
	domain.InterviewStore
}

func (failingInterviews) MarkAttempted(context.Context, domain.InterviewID, float64) error {
	return errors.New("firestore unavailable")
}

type failingAnswers struct {
	domain.AnswerStore
}

func (failingAnswers) ListAnswersByInterview(context.Context, domain.InterviewID) ([]*domain.AnswerRating, error) {
	return nil, errors.New("firestore unavailable")
}

func seedInterview(n int) (*memory.InterviewStore, *memory.AnswerStore) {
	interviews := memory.NewInterviewStore()
	answers := memory.NewAnswerStore()

	questions := make([]domain.QAPair, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.QAPair{
			Question: fmt.Sprintf("Question %d", i),
			Answer:   fmt.Sprintf("Answer %d", i),
		})
	}
	_ = interviews.CreateInterview(context.Background(), &domain.InterviewRecord{
		ID:        "iv-1",
		UserID:    "u1",
		Questions: questions,
	})
	return interviews, answers
}

func quietOptions() Options {
	opts := DefaultOptions()
	opts.AutoRead = false
	return opts
}
