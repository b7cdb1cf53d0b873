package session

import (
	"math"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

// AggregateScore is the mean rating rounded half away from zero to one
// decimal, or 0 when there are no ratings. Every record counts, including
// repeated answers to the same question.
func AggregateScore(answers []*domain.AnswerRating) float64 {
	if len(answers) == 0 {
		return 0
	}

	var sum float64
	for _, a := range answers {
		sum += a.Rating
	}
	return math.Round(sum/float64(len(answers))*10) / 10
}
