package generation

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

const questionPromptHeader = `
As an experienced prompt engineer, generate a JSON array containing %d %s interview questions along with detailed answers based on the following job information. Each object in the array should have the fields "question" and "answer", formatted as follows:

[
  { "question": "<Question text>", "answer": "<Answer text>" },
  ...
]
`

const questionPromptFooter = `
Please format the output strictly as an array of JSON objects without any additional labels, code blocks, or explanations. Return only the JSON array with questions and answers.
`

const entryLevelClause = "Important: Since the required experience is 0, the questions must be very easy and short, suitable for an entry-level or fresher candidate. Focus on fundamental concepts only."

// BuildQuestionPrompt embeds every InterviewSpec field in the generation prompt.
func BuildQuestionPrompt(spec domain.InterviewSpec) string {
	stack := spec.TechStackText()

	var b strings.Builder
	fmt.Fprintf(&b, questionPromptHeader, spec.NumberOfQuestions, spec.InterviewType)

	b.WriteString("\nJob Information:\n")
	fmt.Fprintf(&b, "- Job Position: %s\n", spec.Position)
	fmt.Fprintf(&b, "- Job Description: %s\n", spec.Description)
	fmt.Fprintf(&b, "- Years of Experience Required: %d\n", spec.YearsExperience)
	fmt.Fprintf(&b, "- Tech Stacks: %s\n", stack)
	fmt.Fprintf(&b, "- Interview Type: %s\n", spec.InterviewType)
	fmt.Fprintf(&b, "- Number of Questions: %d\n\n", spec.NumberOfQuestions)

	b.WriteString(emphasisClause(spec.InterviewType, stack))
	b.WriteString("\n")
	if spec.YearsExperience == 0 {
		b.WriteString(entryLevelClause)
		b.WriteString("\n")
	}

	b.WriteString(questionPromptFooter)
	return b.String()
}

func emphasisClause(t domain.InterviewType, stack string) string {
	switch t {
	case domain.InterviewBehavioural:
		return "The questions should assess behavioral competencies, leadership, teamwork, problem-solving approaches, and past experiences."
	case domain.InterviewMixed:
		return fmt.Sprintf("The questions should be a mix of technical skills assessment in %s development and behavioral competencies including leadership, teamwork, and problem-solving approaches.", stack)
	case domain.InterviewTechnical:
		fallthrough
	default:
		return fmt.Sprintf("The questions should assess technical skills in %s development, problem-solving, algorithms, data structures, and best practices.", stack)
	}
}
