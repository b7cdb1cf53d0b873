package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

var (
	// Models like to wrap JSON in fences and label it.
	noiseTokens = regexp.MustCompile("(json|```|`)")
	arraySpan   = regexp.MustCompile(`(?s)\[.*\]`)
	objectSpan  = regexp.MustCompile(`(?s)\{.*\}`)
)

func cleanResponse(raw string) string {
	return noiseTokens.ReplaceAllString(strings.TrimSpace(raw), "")
}

func parseError(msg string, cause error) *domain.GenerationError {
	return &domain.GenerationError{Kind: domain.KindParse, Message: msg, Err: cause}
}

type rawPair struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

// ParseQuestions turns the model's raw text into QAPairs. It keeps the
// greedy span from the first '[' to the last ']' and decodes it as JSON.
// Entries without a question or an answer are rejected.
//
// Cleanup deletes every backtick and every lowercase "json" anywhere in
// the text, inside answers too, so a list only survives a round trip
// when its content has neither.
func ParseQuestions(raw string) ([]domain.QAPair, error) {
	span := arraySpan.FindString(cleanResponse(raw))
	if span == "" {
		return nil, parseError("no JSON array found in response", nil)
	}

	var items []*rawPair
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return nil, parseError("invalid JSON format: "+err.Error(), err)
	}

	out := make([]domain.QAPair, 0, len(items))
	for i, it := range items {
		if it == nil || it.Question == nil || strings.TrimSpace(*it.Question) == "" {
			return nil, parseError(fmt.Sprintf("item %d has no question", i), nil)
		}
		if it.Answer == nil || strings.TrimSpace(*it.Answer) == "" {
			return nil, parseError(fmt.Sprintf("item %d has no answer", i), nil)
		}
		out = append(out, domain.QAPair{Question: *it.Question, Answer: *it.Answer})
	}
	return out, nil
}

// DecodeObject applies the same cleanup as ParseQuestions but extracts the
// first '{' ... last '}' span into v.
func DecodeObject(raw string, v any) error {
	span := objectSpan.FindString(cleanResponse(raw))
	if span == "" {
		return parseError("no JSON object found in response", nil)
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return parseError("invalid JSON format: "+err.Error(), err)
	}
	return nil
}
