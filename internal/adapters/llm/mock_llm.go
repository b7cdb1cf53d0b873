package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	requestedCount = regexp.MustCompile(`containing (\d+) `)
	positionLine   = regexp.MustCompile(`- Job Position: (.*)`)
)

// MockLLM answers prompts with canned but well formed output so the app
// can run locally without credentials.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateText(ctx context.Context, _ string, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if strings.Contains(prompt, `"ratings"`) {
		return m.grade(prompt), nil
	}
	return m.questions(prompt), nil
}

func (m *MockLLM) questions(prompt string) string {
	n := 5
	if match := requestedCount.FindStringSubmatch(prompt); match != nil {
		if v, err := strconv.Atoi(match[1]); err == nil && v > 0 {
			n = v
		}
	}
	position := "the role"
	if match := positionLine.FindStringSubmatch(prompt); match != nil {
		position = strings.TrimSpace(match[1])
	}

	type pair struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	out := make([]pair, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, pair{
			Question: fmt.Sprintf("Question %d: what experience do you bring to %s?", i, position),
			Answer:   fmt.Sprintf("A strong answer %d names a concrete project, the candidate's role and a measurable result.", i),
		})
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	return "```json\n" + string(b) + "\n```"
}

func (m *MockLLM) grade(prompt string) string {
	// deterministic per prompt, between 4 and 9
	rating := 4 + len(strings.Fields(prompt))%6
	return fmt.Sprintf(`{"ratings": %d, "feedback": "Mock feedback: structure the answer around one concrete example."}`, rating)
}
