package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "interviewbuddy",
		Short: "AI mock interview practice",
		Long: `interviewbuddy generates mock interview questions with Gemini, grades
recorded answers and runs practice sessions question by question.

Configuration comes from the environment (IB_*, GEMINI_API_KEY), an optional
.env file and the YAML file named by IB_CONFIG_FILE.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newGenerateCmd(), newPracticeCmd())
	return root
}
