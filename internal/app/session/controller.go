package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

var (
	ErrNoQuestions         = errors.New("interview has no questions")
	ErrSubmitUnavailable   = errors.New("submit is only available on the last question")
	ErrPlaybackUnavailable = errors.New("no question is being presented")
	ErrClosed              = errors.New("session closed")
)

// State of a practice session.
type State int

const (
	StatePresenting State = iota
	StateAdvancing
	StateSubmitting
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePresenting:
		return "presenting"
	case StateAdvancing:
		return "advancing"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options are the presentation parameters of a session.
type Options struct {
	// AdvanceDelay is how long Next stays in Advancing; 0 advances at once.
	AdvanceDelay time.Duration
	AutoRead     bool
	Voice        VoicePreference
	Rate         float64
	Pitch        float64
	Volume       float64
}

func DefaultOptions() Options {
	return Options{
		AdvanceDelay: 500 * time.Millisecond,
		AutoRead:     true,
		Voice: VoicePreference{
			Lang:   "en",
			Region: "en-IN",
			Hints:  []string{"indian", "india"},
		},
		Rate:   0.7,
		Pitch:  2.0,
		Volume: 1.0,
	}
}

// AfterFunc schedules f after d and returns a function that cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func realAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Deps are the collaborators of a Controller. Speaker and Screen are optional.
type Deps struct {
	Interviews domain.InterviewStore
	Answers    domain.AnswerStore
	Speaker    domain.Speaker
	Screen     domain.Screen
	AfterFunc  AfterFunc
}

// View is a snapshot of a session for presentation.
type View struct {
	InterviewID domain.InterviewID `json:"interviewId"`
	State       string             `json:"state"`
	Index       int                `json:"index"`
	Total       int                `json:"total"`
	Question    string             `json:"question"`
	AutoRead    bool               `json:"autoRead"`
	Playing     bool               `json:"playing"`
	FullScreen  bool               `json:"fullScreen"`
	CanPrevious bool               `json:"canPrevious"`
	CanNext     bool               `json:"canNext"`
	CanSubmit   bool               `json:"canSubmit"`
	Score       *float64           `json:"score,omitempty"`
}

// Controller drives one practice session question by question. All state
// lives behind mu; timers and playback only touch it through the lock and
// are disposed of when the session closes or completes.
type Controller struct {
	mu sync.Mutex

	deps        Deps
	opts        Options
	interviewID domain.InterviewID
	owner       domain.UserID
	questions   []domain.QAPair

	index      int
	state      State
	autoRead   bool
	playing    bool
	fullScreen bool
	score      *float64
	closed     bool

	// disposers
	stopAdvance  func() bool
	stopPlayback context.CancelFunc
	playGen      uint64

	base       context.Context
	cancelBase context.CancelFunc
	log        *slog.Logger
}

// NewController loads the interview's questions and enters Presenting(0).
// ctx is only used for loading; playback outlives it until Close.
func NewController(ctx context.Context, deps Deps, interviewID domain.InterviewID, opts Options) (*Controller, error) {
	rec, err := deps.Interviews.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("loading interview %s: %w", interviewID, err)
	}
	if len(rec.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	if deps.AfterFunc == nil {
		deps.AfterFunc = realAfterFunc
	}

	base, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &Controller{
		deps:        deps,
		opts:        opts,
		interviewID: interviewID,
		owner:       rec.UserID,
		questions:   rec.Questions,
		autoRead:    opts.AutoRead,
		base:        base,
		cancelBase:  cancel,
		log:         observability.LoggerFromContext(ctx).With("interview_id", interviewID),
	}

	c.mu.Lock()
	c.enterPresentingLocked(0)
	c.mu.Unlock()

	return c, nil
}

// Owner is the user the practiced interview belongs to.
func (c *Controller) Owner() domain.UserID {
	return c.owner
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	last := len(c.questions) - 1
	presenting := c.state == StatePresenting && !c.closed

	v := View{
		InterviewID: c.interviewID,
		State:       c.state.String(),
		Index:       c.index,
		Total:       len(c.questions),
		Question:    c.questions[c.index].Question,
		AutoRead:    c.autoRead,
		Playing:     c.playing,
		FullScreen:  c.fullScreen,
		CanPrevious: presenting && c.index > 0,
		CanNext:     presenting && c.index < last,
		CanSubmit:   presenting && c.index == last,
	}
	if c.score != nil {
		s := *c.score
		v.Score = &s
	}
	return v
}

// Next moves to the following question after AdvanceDelay. It reports
// false, changing nothing, unless a non-final question is being presented.
func (c *Controller) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StatePresenting || c.index >= len(c.questions)-1 {
		return false
	}

	c.stopPlaybackLocked()
	if c.opts.AdvanceDelay <= 0 {
		c.enterPresentingLocked(c.index + 1)
		return true
	}

	c.state = StateAdvancing
	c.stopAdvance = c.deps.AfterFunc(c.opts.AdvanceDelay, c.completeAdvance)
	return true
}

func (c *Controller) completeAdvance() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateAdvancing {
		return
	}
	c.stopAdvance = nil
	c.enterPresentingLocked(c.index + 1)
}

// Previous goes back one question immediately. It is a no-op on the
// first question and while advancing.
func (c *Controller) Previous() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StatePresenting || c.index == 0 {
		return false
	}

	c.stopPlaybackLocked()
	c.enterPresentingLocked(c.index - 1)
	return true
}

func (c *Controller) enterPresentingLocked(i int) {
	c.index = i
	c.state = StatePresenting
	c.log.Debug("presenting question", "index", i)
	if c.autoRead {
		c.startPlaybackLocked()
	}
}

// ToggleAutoRead flips auto reading for questions entered from now on.
// The current question is not replayed.
func (c *Controller) ToggleAutoRead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.autoRead = !c.autoRead
	return c.autoRead
}

// Play reads the current question aloud, or stops reading if it already is.
// It reports whether playback is now running.
func (c *Controller) Play() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing {
		c.stopPlaybackLocked()
		return false, nil
	}
	if c.closed || c.state != StatePresenting {
		return false, ErrPlaybackUnavailable
	}
	return c.startPlaybackLocked(), nil
}

// StopReading interrupts playback, if any.
func (c *Controller) StopReading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopPlaybackLocked()
}

func (c *Controller) utteranceLocked() domain.Utterance {
	u := domain.Utterance{
		Text:   c.questions[c.index].Question,
		Rate:   c.opts.Rate,
		Pitch:  c.opts.Pitch,
		Volume: c.opts.Volume,
	}
	if c.deps.Speaker != nil {
		u.Voice = SelectVoice(c.deps.Speaker.Voices(), c.opts.Voice)
	}
	return u
}

func (c *Controller) startPlaybackLocked() bool {
	if c.deps.Speaker == nil {
		return false
	}

	c.stopPlaybackLocked()

	ctx, cancel := context.WithCancel(c.base)
	c.playGen++
	gen := c.playGen
	c.playing = true
	c.stopPlayback = cancel

	u := c.utteranceLocked()
	speaker := c.deps.Speaker
	go func() {
		defer cancel()
		err := speaker.Speak(ctx, u)
		if err != nil && ctx.Err() == nil {
			c.log.Warn("speech playback failed", "error", err)
		}

		c.mu.Lock()
		if c.playGen == gen {
			c.playing = false
			c.stopPlayback = nil
		}
		c.mu.Unlock()
	}()
	return true
}

func (c *Controller) stopPlaybackLocked() {
	if c.stopPlayback != nil {
		c.stopPlayback()
		c.stopPlayback = nil
	}
	c.playGen++
	c.playing = false
}

// EnterFullScreen sets the full-screen flag and asks the screen for it.
// The request is best effort; question navigation is unaffected.
func (c *Controller) EnterFullScreen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setFullScreenLocked(true)
}

func (c *Controller) ExitFullScreen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setFullScreenLocked(false)
}

func (c *Controller) ToggleFullScreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setFullScreenLocked(!c.fullScreen)
	return c.fullScreen
}

func (c *Controller) setFullScreenLocked(on bool) {
	if c.fullScreen == on {
		return
	}
	c.fullScreen = on

	if c.deps.Screen == nil {
		return
	}
	var err error
	if on {
		err = c.deps.Screen.RequestFullScreen()
	} else {
		err = c.deps.Screen.ExitFullScreen()
	}
	if err != nil {
		c.log.Warn("full screen request failed", "enter", on, "error", err)
	}
}

// Submit finishes the session from the last question: it averages the
// recorded ratings and marks the interview attempted. Persistence failures
// are logged and swallowed, the session is Done either way.
func (c *Controller) Submit(ctx context.Context) (View, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return View{}, ErrClosed
	}
	if c.state != StatePresenting || c.index != len(c.questions)-1 {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrSubmitUnavailable
	}
	c.state = StateSubmitting
	c.setFullScreenLocked(false)
	c.stopPlaybackLocked()
	c.mu.Unlock()

	score, ok := c.persistScore(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.score = &score
	}
	c.state = StateDone
	c.disposeLocked()
	return c.viewLocked(), nil
}

func (c *Controller) persistScore(ctx context.Context) (float64, bool) {
	log := c.log
	answers, err := c.deps.Answers.ListAnswersByInterview(ctx, c.interviewID)
	if err != nil {
		log.Error("listing answers for score failed", "error", err)
		return 0, false
	}

	score := AggregateScore(answers)
	if err := c.deps.Interviews.MarkAttempted(ctx, c.interviewID, score); err != nil {
		log.Error("saving interview score failed", "score", score, "error", err)
		return score, true
	}

	log.Info("interview completed", "score", score, "answers", len(answers))
	return score, true
}

// Close disposes of any pending advance and playback. It is safe to call
// more than once and from any state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.setFullScreenLocked(false)
	c.disposeLocked()
	c.closed = true
}

func (c *Controller) disposeLocked() {
	if c.stopAdvance != nil {
		c.stopAdvance()
		c.stopAdvance = nil
	}
	c.stopPlaybackLocked()
	c.cancelBase()
}
