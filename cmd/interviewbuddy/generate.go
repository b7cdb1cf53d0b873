package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/interviewbuddy/internal/config"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

// specFlags are the interview form fields as command line flags.
type specFlags struct {
	position      string
	description   string
	experience    int
	techStack     string
	interviewType string
	count         int
}

func (f *specFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.position, "position", "", "job position")
	fl.StringVar(&f.description, "description", "", "job description")
	fl.IntVar(&f.experience, "experience", 0, "years of experience required")
	fl.StringVar(&f.techStack, "stack", "", "comma separated tech stack")
	fl.StringVar(&f.interviewType, "type", string(domain.InterviewTechnical), "technical, behavioural or mixed")
	fl.IntVar(&f.count, "count", 5, "number of questions (1-20)")
}

func (f *specFlags) spec() domain.InterviewSpec {
	return domain.InterviewSpec{
		Position:          f.position,
		Description:       f.description,
		YearsExperience:   f.experience,
		TechStack:         domain.ParseTechStack(f.techStack),
		InterviewType:     domain.InterviewType(f.interviewType),
		NumberOfQuestions: f.count,
	}
}

func newGenerateCmd() *cobra.Command {
	var flags specFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate interview questions and print them as JSON",
		Example: `  interviewbuddy generate --position "Backend Engineer" \
    --description "Build and run the payments API" --experience 3 \
    --stack "Go, PostgreSQL" --type technical --count 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			observability.Setup(os.Stderr, cfg.LogLevel)

			svc, err := buildServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			pairs, err := svc.orchestrator.GenerateQuestions(cmd.Context(), flags.spec())
			if err != nil {
				return describeFailure(cmd.ErrOrStderr(), err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(pairs)
		},
	}

	flags.register(cmd)
	return cmd
}

// describeFailure prints the user facing title and description of a
// classified failure and returns the error for the exit status.
func describeFailure(w io.Writer, err error) error {
	var (
		ge *domain.GenerationError
		ve *domain.ValidationError
	)
	switch {
	case errors.As(err, &ge):
		fmt.Fprintf(w, "%s: %s\n", ge.Kind.Title(), ge.Kind.Description())
	case errors.As(err, &ve):
		fmt.Fprintln(w, "Invalid input:")
		for field, msg := range ve.Fields {
			fmt.Fprintf(w, "  %s: %s\n", field, msg)
		}
	}
	return err
}
