package httpadapter

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PabloGalante/interviewbuddy/internal/app/feedback"
	"github.com/PabloGalante/interviewbuddy/internal/app/interview"
	"github.com/PabloGalante/interviewbuddy/internal/app/session"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type interviewRequest struct {
	Position          string   `json:"position"`
	Description       string   `json:"description"`
	Experience        int      `json:"experience"`
	TechStack         []string `json:"techStack"`
	InterviewType     string   `json:"interviewType"`
	NumberOfQuestions int      `json:"numberOfQuestions"`
}

func (r interviewRequest) spec() domain.InterviewSpec {
	return domain.InterviewSpec{
		Position:          r.Position,
		Description:       r.Description,
		YearsExperience:   r.Experience,
		TechStack:         r.TechStack,
		InterviewType:     domain.InterviewType(r.InterviewType),
		NumberOfQuestions: r.NumberOfQuestions,
	}
}

type interviewResponse struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Position          string          `json:"position"`
	Description       string          `json:"description"`
	Experience        int             `json:"experience"`
	TechStack         []string        `json:"techStack"`
	InterviewType     string          `json:"interviewType"`
	NumberOfQuestions int             `json:"numberOfQuestions"`
	Questions         []domain.QAPair `json:"questions"`
	Status            string          `json:"status"`
	Score             *float64        `json:"score,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type dashboardResponse struct {
	Pending   []interviewResponse `json:"pending"`
	Attempted []interviewResponse `json:"attempted"`
}

type recordAnswerRequest struct {
	QuestionIndex *int   `json:"questionIndex" validate:"required,gte=0"`
	UserAnswer    string `json:"userAnswer" validate:"required"`
}

type answerResponse struct {
	ID            string    `json:"id"`
	QuestionIndex int       `json:"questionIndex"`
	Question      string    `json:"question"`
	CorrectAnswer string    `json:"correctAnswer"`
	UserAnswer    string    `json:"userAnswer"`
	Feedback      string    `json:"feedback"`
	Rating        float64   `json:"rating"`
	CreatedAt     time.Time `json:"createdAt"`
}

type feedbackResponse struct {
	Interview interviewResponse `json:"interview"`
	Answers   []answerResponse  `json:"answers"`
	Score     float64           `json:"score"`
}

type startSessionResponse struct {
	SessionID string       `json:"sessionId"`
	View      session.View `json:"view"`
}

type actionResponse struct {
	Changed bool         `json:"changed"`
	View    session.View `json:"view"`
}

type fullScreenRequest struct {
	// nil toggles
	On *bool `json:"on"`
}

// ─────────────────────────────────────────────
// Interview handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateInterview(c *gin.Context) {
	var req interviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rec, err := s.interviews.Create(c.Request.Context(), userFrom(c), req.spec())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toInterviewResponse(rec))
}

func (s *Server) handleDashboard(c *gin.Context) {
	dash, err := s.interviews.Dashboard(c.Request.Context(), userFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDashboardResponse(dash))
}

func (s *Server) handleGetInterview(c *gin.Context) {
	rec, err := s.interviews.Get(c.Request.Context(), userFrom(c), domain.InterviewID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInterviewResponse(rec))
}

func (s *Server) handleUpdateInterview(c *gin.Context) {
	var req interviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rec, err := s.interviews.Update(c.Request.Context(), userFrom(c), domain.InterviewID(c.Param("id")), req.spec())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInterviewResponse(rec))
}

func (s *Server) handleDeleteInterview(c *gin.Context) {
	if err := s.interviews.Delete(c.Request.Context(), userFrom(c), domain.InterviewID(c.Param("id"))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRecordAnswer(c *gin.Context) {
	var req recordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ans, err := s.interviews.RecordAnswer(c.Request.Context(), interview.RecordAnswerInput{
		UserID:        userFrom(c),
		InterviewID:   domain.InterviewID(c.Param("id")),
		QuestionIndex: *req.QuestionIndex,
		UserAnswer:    req.UserAnswer,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAnswerResponse(ans))
}

func (s *Server) handleFeedback(c *gin.Context) {
	report, err := s.feedback.Report(c.Request.Context(), userFrom(c), domain.InterviewID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFeedbackResponse(report))
}

// ─────────────────────────────────────────────
// Session handlers
// ─────────────────────────────────────────────

func (s *Server) handleStartSession(c *gin.Context) {
	sid, ctrl, err := s.sessions.Start(c.Request.Context(), userFrom(c), domain.InterviewID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, startSessionResponse{SessionID: string(sid), View: ctrl.View()})
}

// withSession resolves :sid for the calling user or writes a 404.
func (s *Server) withSession(c *gin.Context) (*session.Controller, bool) {
	ctrl, err := s.sessions.Get(domain.SessionID(c.Param("sid")), userFrom(c))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return ctrl, true
}

func (s *Server) handleSessionView(c *gin.Context) {
	if ctrl, ok := s.withSession(c); ok {
		c.JSON(http.StatusOK, ctrl.View())
	}
}

func (s *Server) handleEndSession(c *gin.Context) {
	if err := s.sessions.End(domain.SessionID(c.Param("sid")), userFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleNext(c *gin.Context) {
	if ctrl, ok := s.withSession(c); ok {
		changed := ctrl.Next()
		c.JSON(http.StatusOK, actionResponse{Changed: changed, View: ctrl.View()})
	}
}

func (s *Server) handlePrevious(c *gin.Context) {
	if ctrl, ok := s.withSession(c); ok {
		changed := ctrl.Previous()
		c.JSON(http.StatusOK, actionResponse{Changed: changed, View: ctrl.View()})
	}
}

func (s *Server) handleSubmit(c *gin.Context) {
	ctrl, ok := s.withSession(c)
	if !ok {
		return
	}

	view, err := ctrl.Submit(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	// the session is over; the feedback page takes it from here
	_ = s.sessions.End(domain.SessionID(c.Param("sid")), userFrom(c))
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleToggleAutoRead(c *gin.Context) {
	if ctrl, ok := s.withSession(c); ok {
		ctrl.ToggleAutoRead()
		c.JSON(http.StatusOK, ctrl.View())
	}
}

func (s *Server) handlePlay(c *gin.Context) {
	ctrl, ok := s.withSession(c)
	if !ok {
		return
	}
	if _, err := ctrl.Play(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.View())
}

func (s *Server) handleStopReading(c *gin.Context) {
	if ctrl, ok := s.withSession(c); ok {
		ctrl.StopReading()
		c.JSON(http.StatusOK, ctrl.View())
	}
}

func (s *Server) handleFullScreen(c *gin.Context) {
	ctrl, ok := s.withSession(c)
	if !ok {
		return
	}

	var req fullScreenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	switch {
	case req.On == nil:
		ctrl.ToggleFullScreen()
	case *req.On:
		ctrl.EnterFullScreen()
	default:
		ctrl.ExitFullScreen()
	}
	c.JSON(http.StatusOK, ctrl.View())
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func toInterviewResponse(rec *domain.InterviewRecord) interviewResponse {
	questions := rec.Questions
	if questions == nil {
		questions = []domain.QAPair{}
	}
	return interviewResponse{
		ID:                string(rec.ID),
		UserID:            string(rec.UserID),
		Position:          rec.Spec.Position,
		Description:       rec.Spec.Description,
		Experience:        rec.Spec.YearsExperience,
		TechStack:         rec.Spec.TechStack,
		InterviewType:     string(rec.Spec.InterviewType),
		NumberOfQuestions: rec.Spec.NumberOfQuestions,
		Questions:         questions,
		Status:            string(rec.Status),
		Score:             rec.Score,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

func toInterviewResponses(recs []*domain.InterviewRecord) []interviewResponse {
	out := make([]interviewResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, toInterviewResponse(r))
	}
	return out
}

func toDashboardResponse(d *interview.Dashboard) dashboardResponse {
	return dashboardResponse{
		Pending:   toInterviewResponses(d.Pending),
		Attempted: toInterviewResponses(d.Attempted),
	}
}

func toAnswerResponse(a *domain.AnswerRating) answerResponse {
	return answerResponse{
		ID:            string(a.ID),
		QuestionIndex: a.QuestionIndex,
		Question:      a.Question,
		CorrectAnswer: a.CorrectAnswer,
		UserAnswer:    a.UserAnswer,
		Feedback:      a.Feedback,
		Rating:        a.Rating,
		CreatedAt:     a.CreatedAt,
	}
}

func toFeedbackResponse(r *feedback.Report) feedbackResponse {
	answers := make([]answerResponse, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, toAnswerResponse(a))
	}
	return feedbackResponse{
		Interview: toInterviewResponse(r.Interview),
		Answers:   answers,
		Score:     r.Score,
	}
}
