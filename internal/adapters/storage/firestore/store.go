package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

const (
	interviewsCollection = "interviews"
	answersCollection    = "userAnswers"
)

// Store implements domain.InterviewStore and domain.AnswerStore on Firestore.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project (IB_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) interviewsCol() *firestore.CollectionRef {
	return s.client.Collection(interviewsCollection)
}

func (s *Store) interviewDoc(id domain.InterviewID) *firestore.DocumentRef {
	return s.interviewsCol().Doc(string(id))
}

func (s *Store) answersCol() *firestore.CollectionRef {
	return s.client.Collection(answersCollection)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type questionDoc struct {
	Question string `firestore:"question"`
	Answer   string `firestore:"answer"`
}

// interviewDoc keeps the field names the web client reads.
type interviewDoc struct {
	Position          string        `firestore:"position"`
	Description       string        `firestore:"description"`
	Experience        int           `firestore:"experience"`
	UserID            string        `firestore:"userId"`
	TechStack         string        `firestore:"techStack"`
	NumberOfQuestions int           `firestore:"numberOfQuestions"`
	InterviewType     string        `firestore:"interviewType"`
	Questions         []questionDoc `firestore:"questions"`
	Status            string        `firestore:"status"`
	Score             *float64      `firestore:"score"`
	CreatedAt         time.Time     `firestore:"createdAt,serverTimestamp"`
	UpdatedAt         time.Time     `firestore:"updateAt,serverTimestamp"`
}

type answerDoc struct {
	InterviewID   string    `firestore:"mockIdRef"`
	QuestionIndex int       `firestore:"questionIndex"`
	Question      string    `firestore:"question"`
	CorrectAnswer string    `firestore:"correct_ans"`
	UserAnswer    string    `firestore:"user_ans"`
	Feedback      string    `firestore:"feedback"`
	Rating        float64   `firestore:"rating"`
	UserID        string    `firestore:"userId"`
	CreatedAt     time.Time `firestore:"createdAt,serverTimestamp"`
	UpdatedAt     time.Time `firestore:"updateAt,serverTimestamp"`
}

func toQuestionDocs(pairs []domain.QAPair) []questionDoc {
	out := make([]questionDoc, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, questionDoc{Question: p.Question, Answer: p.Answer})
	}
	return out
}

func toInterviewDoc(rec *domain.InterviewRecord) interviewDoc {
	st := rec.Status
	if st == "" {
		st = domain.StatusPending
	}
	return interviewDoc{
		Position:          rec.Spec.Position,
		Description:       rec.Spec.Description,
		Experience:        rec.Spec.YearsExperience,
		UserID:            string(rec.UserID),
		TechStack:         rec.Spec.TechStackText(),
		NumberOfQuestions: rec.Spec.NumberOfQuestions,
		InterviewType:     string(rec.Spec.InterviewType),
		Questions:         toQuestionDocs(rec.Questions),
		Status:            string(st),
		Score:             rec.Score,
		// CreatedAt and UpdatedAt stay zero so Firestore stamps them.
	}
}

func toAnswerDoc(ans *domain.AnswerRating) answerDoc {
	return answerDoc{
		InterviewID:   string(ans.InterviewID),
		QuestionIndex: ans.QuestionIndex,
		Question:      ans.Question,
		CorrectAnswer: ans.CorrectAnswer,
		UserAnswer:    ans.UserAnswer,
		Feedback:      ans.Feedback,
		Rating:        ans.Rating,
		UserID:        string(ans.UserID),
	}
}

func decodeInterview(snap *firestore.DocumentSnapshot) (*domain.InterviewRecord, error) {
	var doc interviewDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode interviewDoc %s: %w", snap.Ref.ID, err)
	}

	questions := make([]domain.QAPair, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		questions = append(questions, domain.QAPair{Question: q.Question, Answer: q.Answer})
	}

	st := domain.InterviewStatus(doc.Status)
	if st == "" {
		st = domain.StatusPending
	}

	return &domain.InterviewRecord{
		ID:     domain.InterviewID(snap.Ref.ID),
		UserID: domain.UserID(doc.UserID),
		Spec: domain.InterviewSpec{
			Position:          doc.Position,
			Description:       doc.Description,
			YearsExperience:   doc.Experience,
			TechStack:         domain.ParseTechStack(doc.TechStack),
			InterviewType:     domain.InterviewType(doc.InterviewType),
			NumberOfQuestions: doc.NumberOfQuestions,
		},
		Questions: questions,
		Status:    st,
		Score:     doc.Score,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func decodeInterviews(snaps []*firestore.DocumentSnapshot) ([]*domain.InterviewRecord, error) {
	out := make([]*domain.InterviewRecord, 0, len(snaps))
	for _, snap := range snaps {
		rec, err := decodeInterview(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ─────────────────────────────────────────
// InterviewStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateInterview(ctx context.Context, rec *domain.InterviewRecord) error {
	if rec.Status == "" {
		rec.Status = domain.StatusPending
	}

	if _, err := s.interviewDoc(rec.ID).Create(ctx, toInterviewDoc(rec)); err != nil {
		return fmt.Errorf("firestore CreateInterview: %w", err)
	}
	return nil
}

func (s *Store) UpdateInterview(ctx context.Context, rec *domain.InterviewRecord) error {
	_, err := s.interviewDoc(rec.ID).Update(ctx, []firestore.Update{
		{Path: "position", Value: rec.Spec.Position},
		{Path: "description", Value: rec.Spec.Description},
		{Path: "experience", Value: rec.Spec.YearsExperience},
		{Path: "techStack", Value: rec.Spec.TechStackText()},
		{Path: "interviewType", Value: string(rec.Spec.InterviewType)},
		{Path: "numberOfQuestions", Value: rec.Spec.NumberOfQuestions},
		{Path: "questions", Value: toQuestionDocs(rec.Questions)},
		{Path: "updateAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("firestore UpdateInterview: %w", err)
	}
	return nil
}

func (s *Store) GetInterview(ctx context.Context, id domain.InterviewID) (*domain.InterviewRecord, error) {
	snap, err := s.interviewDoc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetInterview: %w", err)
	}
	return decodeInterview(snap)
}

func (s *Store) DeleteInterview(ctx context.Context, id domain.InterviewID) error {
	if _, err := s.interviewDoc(id).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("firestore DeleteInterview: %w", err)
	}
	return nil
}

func (s *Store) userQuery(userID domain.UserID) firestore.Query {
	return s.interviewsCol().
		Where("userId", "==", string(userID)).
		OrderBy("createdAt", firestore.Desc)
}

func (s *Store) ListInterviewsByUser(ctx context.Context, userID domain.UserID) ([]*domain.InterviewRecord, error) {
	iter := s.userQuery(userID).Documents(ctx)
	defer iter.Stop()

	out := []*domain.InterviewRecord{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore ListInterviewsByUser: %w", err)
		}

		rec, err := decodeInterview(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// MarkAttempted checks and flips the status in one transaction so two
// concurrent submissions cannot both score the interview.
func (s *Store) MarkAttempted(ctx context.Context, id domain.InterviewID, score float64) error {
	ref := s.interviewDoc(id)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		st, _ := snap.DataAt("status")
		if st == string(domain.StatusAttempted) {
			return domain.ErrAlreadyAttempted
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(domain.StatusAttempted)},
			{Path: "score", Value: score},
			{Path: "updateAt", Value: firestore.ServerTimestamp},
		})
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAlreadyAttempted):
		return err
	case isNotFound(err):
		return domain.ErrNotFound
	default:
		return fmt.Errorf("firestore MarkAttempted: %w", err)
	}
}

// WatchInterviewsByUser follows the user's query with a snapshot listener.
func (s *Store) WatchInterviewsByUser(ctx context.Context, userID domain.UserID) (<-chan []*domain.InterviewRecord, error) {
	it := s.userQuery(userID).Snapshots(ctx)
	out := make(chan []*domain.InterviewRecord, 1)

	go func() {
		defer close(out)
		defer it.Stop()

		log := observability.LoggerFromContext(ctx).With("user_id", userID)
		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					log.Error("interview snapshot listener stopped", "error", err)
				}
				return
			}

			snaps, err := qs.Documents.GetAll()
			if err != nil {
				log.Error("reading interview snapshot", "error", err)
				return
			}
			list, err := decodeInterviews(snaps)
			if err != nil {
				log.Error("decoding interview snapshot", "error", err)
				continue
			}

			select {
			case out <- list:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// ─────────────────────────────────────────
// AnswerStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendAnswer(ctx context.Context, ans *domain.AnswerRating) error {
	doc := toAnswerDoc(ans)

	ref := s.answersCol().NewDoc()
	if ans.ID != "" {
		ref = s.answersCol().Doc(string(ans.ID))
	}
	if _, err := ref.Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendAnswer: %w", err)
	}
	ans.ID = domain.AnswerID(ref.ID)
	return nil
}

func (s *Store) ListAnswersByInterview(ctx context.Context, interviewID domain.InterviewID) ([]*domain.AnswerRating, error) {
	iter := s.answersCol().
		Where("mockIdRef", "==", string(interviewID)).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	out := []*domain.AnswerRating{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore ListAnswersByInterview: %w", err)
		}

		var doc answerDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode answerDoc: %w", err)
		}

		out = append(out, &domain.AnswerRating{
			ID:            domain.AnswerID(snap.Ref.ID),
			InterviewID:   domain.InterviewID(doc.InterviewID),
			UserID:        domain.UserID(doc.UserID),
			QuestionIndex: doc.QuestionIndex,
			Question:      doc.Question,
			CorrectAnswer: doc.CorrectAnswer,
			UserAnswer:    doc.UserAnswer,
			Feedback:      doc.Feedback,
			Rating:        doc.Rating,
			CreatedAt:     doc.CreatedAt,
			UpdatedAt:     doc.UpdatedAt,
		})
	}
	return out, nil
}

func (s *Store) DeleteAnswersByInterview(ctx context.Context, interviewID domain.InterviewID) error {
	refs, err := s.answersCol().
		Where("mockIdRef", "==", string(interviewID)).
		Documents(ctx).
		GetAll()
	if err != nil {
		return fmt.Errorf("firestore DeleteAnswersByInterview: %w", err)
	}
	if len(refs) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	for _, snap := range refs {
		if _, err := bw.Delete(snap.Ref); err != nil {
			bw.End()
			return fmt.Errorf("firestore DeleteAnswersByInterview: %w", err)
		}
	}
	bw.End()
	return nil
}
