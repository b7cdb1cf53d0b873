package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PabloGalante/interviewbuddy/internal/adapters/speech"
	"github.com/PabloGalante/interviewbuddy/internal/adapters/terminal"
	"github.com/PabloGalante/interviewbuddy/internal/app/interview"
	"github.com/PabloGalante/interviewbuddy/internal/app/session"
	"github.com/PabloGalante/interviewbuddy/internal/config"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

const practiceHelp = `Commands:
  n, next          next question
  p, prev          previous question
  a <text>         record an answer to the current question
  play             read the question aloud, or stop reading
  stop             stop reading
  auto             toggle auto read
  full             toggle full screen
  submit           finish (last question only)
  h, help          this help
  q, quit          leave without submitting`

func newPracticeCmd() *cobra.Command {
	var (
		flags       specFlags
		userID      string
		interviewID string
	)

	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Practice an interview in the terminal",
		Long: `practice generates a new interview from the flags (or opens an existing
one with --interview when a persistent store is configured) and presents it
question by question.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// JSON logs would garble the session
			observability.Discard()

			svc, err := buildServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			return runPractice(cmd.Context(), svc, practiceIO{
				in:  cmd.InOrStdin(),
				out: cmd.OutOrStdout(),
			}, domain.UserID(userID), domain.InterviewID(interviewID), flags.spec())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&userID, "user", "local", "user id owning the interview")
	cmd.Flags().StringVar(&interviewID, "interview", "", "practice an existing interview instead of generating one")
	return cmd
}

type practiceIO struct {
	in  io.Reader
	out io.Writer
}

func runPractice(ctx context.Context, svc *services, pio practiceIO, userID domain.UserID, id domain.InterviewID, spec domain.InterviewSpec) error {
	out := pio.out

	var rec *domain.InterviewRecord
	var err error
	if id != "" {
		rec, err = svc.interviews.Get(ctx, userID, id)
	} else {
		fmt.Fprintln(out, "Generating questions...")
		rec, err = svc.interviews.Create(ctx, userID, spec)
	}
	if err != nil {
		return describeFailure(os.Stderr, err)
	}

	deps := session.Deps{Speaker: speech.NewConsole(out, 250*time.Millisecond)}
	if isTerminal(out) {
		deps.Screen = terminal.NewScreen(out)
	}
	sessions := svc.sessionManager(deps)
	defer sessions.CloseAll()

	_, ctrl, err := sessions.Start(ctx, userID, rec.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%s), %d questions\n%s\n\n", rec.Spec.Position, rec.Spec.InterviewType, len(rec.Questions), practiceHelp)
	printView(out, ctrl.View())

	lines := bufio.NewScanner(pio.in)
	for {
		fmt.Fprint(out, "> ")
		if !lines.Scan() {
			return lines.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(lines.Text()), " ")
		switch strings.ToLower(cmd) {
		case "":
			continue
		case "n", "next":
			if !ctrl.Next() {
				fmt.Fprintln(out, "No next question.")
				continue
			}
			waitPresenting(ctrl, svc.cfg.Session.AdvanceDelay)
		case "p", "prev", "previous":
			if !ctrl.Previous() {
				fmt.Fprintln(out, "No previous question.")
				continue
			}
		case "a", "answer":
			v := ctrl.View()
			ans, err := svc.interviews.RecordAnswer(ctx, interview.RecordAnswerInput{
				UserID:        userID,
				InterviewID:   rec.ID,
				QuestionIndex: v.Index,
				UserAnswer:    arg,
			})
			if err != nil {
				_ = describeFailure(out, err)
				continue
			}
			fmt.Fprintf(out, "Rating %.0f/10: %s\n", ans.Rating, ans.Feedback)
			continue
		case "play":
			if _, err := ctrl.Play(); err != nil {
				fmt.Fprintln(out, err)
			}
			continue
		case "stop":
			ctrl.StopReading()
			continue
		case "auto":
			fmt.Fprintf(out, "Auto read: %v\n", ctrl.ToggleAutoRead())
			continue
		case "full":
			ctrl.ToggleFullScreen()
		case "submit":
			v, err := ctrl.Submit(ctx)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			printResult(ctx, out, svc, userID, rec.ID, v)
			return nil
		case "h", "help", "?":
			fmt.Fprintln(out, practiceHelp)
			continue
		case "q", "quit", "exit":
			return nil
		default:
			fmt.Fprintf(out, "Unknown command %q, type help.\n", cmd)
			continue
		}
		printView(out, ctrl.View())
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// waitPresenting blocks until the advance delay has elapsed.
func waitPresenting(ctrl *session.Controller, delay time.Duration) {
	deadline := time.Now().Add(2*delay + time.Second)
	for ctrl.View().State == session.StateAdvancing.String() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
}

func printView(w io.Writer, v session.View) {
	fmt.Fprintf(w, "\nQuestion %d of %d\n  %s\n", v.Index+1, v.Total, v.Question)

	var actions []string
	if v.CanPrevious {
		actions = append(actions, "prev")
	}
	if v.CanNext {
		actions = append(actions, "next")
	}
	if v.CanSubmit {
		actions = append(actions, "submit")
	}
	fmt.Fprintf(w, "  [%s]\n", strings.Join(actions, " | "))
}

func printResult(ctx context.Context, w io.Writer, svc *services, userID domain.UserID, id domain.InterviewID, v session.View) {
	if v.Score == nil {
		fmt.Fprintln(w, "Interview finished, but the score could not be computed.")
		return
	}
	fmt.Fprintf(w, "\nInterview finished. Overall rating: %.1f/10\n", *v.Score)

	report, err := svc.feedback.Report(ctx, userID, id)
	if err != nil {
		return
	}
	for _, a := range report.Answers {
		fmt.Fprintf(w, "\nQ%d. %s\n  Your answer: %s\n  Rating: %.0f/10\n  Feedback: %s\n",
			a.QuestionIndex+1, a.Question, a.UserAnswer, a.Rating, a.Feedback)
	}
}
