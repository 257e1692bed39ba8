package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/donlopez/quiz-client/internal/client"
	"github.com/donlopez/quiz-client/internal/model"
)

// DefaultLimit is the question limit used when the caller does not pick one.
const DefaultLimit = 10

type startRequest struct {
	QuestionSetCode string `json:"questionSetCode"`
	Limit           int    `json:"limit"`
}

type submitRequest struct {
	SessionID int64          `json:"sessionId"`
	Answers   []model.Answer `json:"answers"`
}

// QuizService drives one quiz-taking run: start, fetch, submit per question,
// finish. Callers submit one answer, await the result, then move on; the
// service never has two submissions in flight for the same session.
type QuizService struct {
	api *client.Client

	// Sessions this process has seen reach the finished state. Used to
	// fail resubmission fast, before a wasted network round trip; the
	// server remains the authority.
	mu       sync.Mutex
	finished map[int64]bool
}

func NewQuizService(api *client.Client) *QuizService {
	return &QuizService{
		api:      api,
		finished: make(map[int64]bool),
	}
}

// StartQuiz opens a new session for the named question set. limit must be a
// positive integer; use DefaultLimit when the user left it blank.
func (s *QuizService) StartQuiz(ctx context.Context, questionSetCode string, limit int) (*model.QuizSession, error) {
	if questionSetCode == "" {
		return nil, model.NewValidationError("questionSetCode", "must not be empty")
	}
	if limit <= 0 {
		return nil, model.NewValidationError("limit", "must be a positive integer")
	}

	var sess model.QuizSession
	err := s.api.Do(ctx, "POST", "/api/quiz/start", startRequest{
		QuestionSetCode: questionSetCode,
		Limit:           limit,
	}, &sess)
	if err != nil {
		return nil, err
	}
	// The start response carries no status field; a fresh session is in
	// progress by definition.
	if sess.Status == "" {
		sess.Status = model.StatusInProgress
	}
	return &sess, nil
}

// GetSession fetches the current state of a session, including its questions
// and, once finished, the correctness and explanation fields.
func (s *QuizService) GetSession(ctx context.Context, sessionID int64) (*model.QuizSession, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}

	var sess model.QuizSession
	if err := s.api.Do(ctx, "GET", fmt.Sprintf("/api/quiz/session/%d", sessionID), nil, &sess); err != nil {
		return nil, err
	}
	if sess.Finished() {
		s.markFinished(sessionID)
	}
	return &sess, nil
}

// SubmitAnswers records answers for the session. Exactly one Answer entry
// per question per call; a repeated questionId is rejected locally. Answers
// are idempotently replaceable server-side until the session finishes.
func (s *QuizService) SubmitAnswers(ctx context.Context, sessionID int64, answers []model.Answer) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	if len(answers) == 0 {
		return model.NewValidationError("answers", "must not be empty")
	}
	seen := make(map[int64]bool, len(answers))
	for _, a := range answers {
		if seen[a.QuestionID] {
			return model.NewValidationError("answers", fmt.Sprintf("duplicate entry for question %d", a.QuestionID))
		}
		seen[a.QuestionID] = true
	}
	if s.isFinished(sessionID) {
		return model.NewValidationError("sessionId", "session is already finished")
	}

	return s.api.Do(ctx, "POST", "/api/quiz/submit", submitRequest{
		SessionID: sessionID,
		Answers:   answers,
	}, nil)
}

// FinishQuiz transitions the session to finished server-side. Subsequent
// GetSession calls include scoring data.
func (s *QuizService) FinishQuiz(ctx context.Context, sessionID int64) (*model.QuizSession, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}

	var sess model.QuizSession
	if err := s.api.Do(ctx, "POST", fmt.Sprintf("/api/quiz/finish/%d", sessionID), nil, &sess); err != nil {
		return nil, err
	}
	s.markFinished(sessionID)
	return &sess, nil
}

// BuildAnswer assembles the single Answer entry for a question. Every
// selected choice rides in one entry; an earlier build of this client sent
// one entry per choice and produced duplicate questionId rows.
func BuildAnswer(questionID int64, selectedChoiceIDs []int64) model.Answer {
	ids := make([]int64, len(selectedChoiceIDs))
	copy(ids, selectedChoiceIDs)
	return model.Answer{QuestionID: questionID, SelectedChoiceIDs: ids}
}

func checkSessionID(id int64) error {
	if id <= 0 {
		return model.NewValidationError("sessionId", "must be a positive integer")
	}
	return nil
}

func (s *QuizService) markFinished(id int64) {
	s.mu.Lock()
	s.finished[id] = true
	s.mu.Unlock()
}

func (s *QuizService) isFinished(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished[id]
}
