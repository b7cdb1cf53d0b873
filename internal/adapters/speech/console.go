package speech

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

// DefaultVoices is what the console speaker offers when none are configured.
var DefaultVoices = []domain.Voice{
	{Name: "Console English (US)", Lang: "en-US"},
	{Name: "Console English (India)", Lang: "en-IN"},
}

// Console "reads" utterances by printing them and holding for a time
// proportional to their length, so the practice CLI behaves like a real
// speech engine: playback takes time and can be interrupted.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	voices  []domain.Voice
	perWord time.Duration
}

// NewConsole writes to w. perWord is the playback time per word at rate 1.
func NewConsole(w io.Writer, perWord time.Duration, voices ...domain.Voice) *Console {
	if len(voices) == 0 {
		voices = DefaultVoices
	}
	return &Console{w: w, voices: voices, perWord: perWord}
}

func (c *Console) Voices() []domain.Voice {
	return append([]domain.Voice(nil), c.voices...)
}

func (c *Console) Speak(ctx context.Context, u domain.Utterance) error {
	voice := "default voice"
	if u.Voice != nil {
		voice = u.Voice.Name
	}

	c.mu.Lock()
	fmt.Fprintf(c.w, "[speaking, %s] %s\n", voice, u.Text)
	c.mu.Unlock()

	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	d := time.Duration(float64(c.perWord) * float64(len(strings.Fields(u.Text))) / rate)

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		fmt.Fprintln(c.w, "[speech stopped]")
		c.mu.Unlock()
		return ctx.Err()
	}
}

// Silent is a Speaker with no voices whose playback ends immediately.
// The HTTP server uses it; browsers do their own synthesis.
type Silent struct{}

func (Silent) Voices() []domain.Voice { return nil }

func (Silent) Speak(ctx context.Context, _ domain.Utterance) error {
	return ctx.Err()
}
