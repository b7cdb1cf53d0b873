package terminal

import (
	"io"
	"sync"
)

const (
	enterAltScreen = "\x1b[?1049h\x1b[H"
	exitAltScreen  = "\x1b[?1049l"
)

// Screen switches a terminal to its alternate buffer, the closest a
// terminal gets to a distraction free full-screen view.
type Screen struct {
	mu     sync.Mutex
	w      io.Writer
	active bool
}

func NewScreen(w io.Writer) *Screen {
	return &Screen{w: w}
}

func (s *Screen) RequestFullScreen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return nil
	}
	if _, err := io.WriteString(s.w, enterAltScreen); err != nil {
		return err
	}
	s.active = true
	return nil
}

func (s *Screen) ExitFullScreen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil
	}
	if _, err := io.WriteString(s.w, exitAltScreen); err != nil {
		return err
	}
	s.active = false
	return nil
}
