package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

func validSpec() domain.InterviewSpec {
	return domain.InterviewSpec{
		Position:          "Backend Engineer",
		Description:       "Build and operate Go services on GCP.",
		YearsExperience:   3,
		TechStack:         []string{"Go", "Firestore"},
		InterviewType:     domain.InterviewTechnical,
		NumberOfQuestions: 5,
	}
}

func TestValidateSpecAcceptsValid(t *testing.T) {
	assert.NoError(t, ValidateSpec(validSpec()))

	zeroExp := validSpec()
	zeroExp.YearsExperience = 0
	assert.NoError(t, ValidateSpec(zeroExp))
}

func TestValidateSpecRejects(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(s *domain.InterviewSpec)
	}{
		{"too many questions", "numberOfQuestions", func(s *domain.InterviewSpec) { s.NumberOfQuestions = 21 }},
		{"zero questions", "numberOfQuestions", func(s *domain.InterviewSpec) { s.NumberOfQuestions = 0 }},
		{"negative experience", "experience", func(s *domain.InterviewSpec) { s.YearsExperience = -1 }},
		{"unknown type", "interviewType", func(s *domain.InterviewSpec) { s.InterviewType = "trivia" }},
		{"missing position", "position", func(s *domain.InterviewSpec) { s.Position = "" }},
		{"long position", "position", func(s *domain.InterviewSpec) { s.Position = strings.Repeat("x", 101) }},
		{"short description", "description", func(s *domain.InterviewSpec) { s.Description = "short" }},
		{"empty stack", "techStack", func(s *domain.InterviewSpec) { s.TechStack = []string{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)

			err := ValidateSpec(spec)
			require.Error(t, err)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestTranslateErrorsNonValidation(t *testing.T) {
	fields := TranslateErrors(errors.New("unexpected EOF"))
	assert.Equal(t, map[string]string{"detail": "unexpected EOF"}, fields)
}

type answerBody struct {
	QuestionIndex *int   `json:"questionIndex" validate:"required,gte=0"`
	UserAnswer    string `json:"userAnswer" validate:"required"`
}

func TestSetupTranslatesBindingErrors(t *testing.T) {
	require.NoError(t, Setup())
	require.NoError(t, Setup(), "setup is idempotent")

	err := binding.Validator.ValidateStruct(&answerBody{})
	require.Error(t, err)

	fields := TranslateErrors(err)
	assert.Equal(t, "questionIndex is a required field", fields["questionIndex"])
	assert.Equal(t, "userAnswer is a required field", fields["userAnswer"])

	negative := -1
	fields = TranslateErrors(binding.Validator.ValidateStruct(&answerBody{QuestionIndex: &negative, UserAnswer: "x"}))
	assert.Equal(t, map[string]string{"questionIndex": "questionIndex must be 0 or greater"}, fields)

	zero := 0
	assert.NoError(t, binding.Validator.ValidateStruct(&answerBody{QuestionIndex: &zero, UserAnswer: "x"}))
	assert.NoError(t, binding.Validator.ValidateStruct([]answerBody{{QuestionIndex: &zero, UserAnswer: "x"}}))
}

func TestValidateSpecMessagesAreTranslated(t *testing.T) {
	spec := validSpec()
	spec.Position = ""

	var ve *domain.ValidationError
	require.True(t, errors.As(ValidateSpec(spec), &ve))
	assert.Equal(t, "position is a required field", ve.Fields["position"])
}
