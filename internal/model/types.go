package model

import (
	"encoding/json"
	"time"
)

// Session status values as reported by the quiz API. A session moves
// in_progress -> finished exactly once and never backward.
const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

type QuizSession struct {
	SessionID       int64      `json:"sessionId"`
	QuestionSetCode string     `json:"questionSetCode"`
	TotalQuestions  int        `json:"totalQuestions"`
	Status          string     `json:"status"`
	Score           *int       `json:"score,omitempty"`
	FinishedAt      *time.Time `json:"finishedAt,omitempty"`
	Questions       []Question `json:"questions,omitempty"`
}

// Finished reports whether the session has reached its terminal state.
// Some backends set finishedAt before flipping status, so either counts.
func (s *QuizSession) Finished() bool {
	return s.Status == StatusFinished || s.FinishedAt != nil
}

type Question struct {
	QuestionID        int64    `json:"questionId"`
	Text              string   `json:"text"`
	MultiCorrect      bool     `json:"multiCorrect"`
	Choices           []Choice `json:"choices"`
	SelectedChoiceIDs []int64  `json:"selectedChoiceIds,omitempty"`
	// CorrectChoiceIDs and Explanation are only present once the owning
	// session is finished. The API must not leak them earlier.
	CorrectChoiceIDs []int64 `json:"correctChoiceIds,omitempty"`
	Explanation      string  `json:"explanation,omitempty"`
}

type Choice struct {
	ChoiceID int64  `json:"choiceId"`
	Label    string `json:"label"`
	Text     string `json:"text"`
}

// Answer is one per-question submission. Exactly one Answer entry per
// question per submit call; multi-correct questions carry every selected
// choice id in the one entry.
type Answer struct {
	QuestionID        int64   `json:"questionId"`
	SelectedChoiceIDs []int64 `json:"selectedChoiceIds"`
}

// The backend has shipped two generations of field names for questions,
// choices and the session set code. They are normalized here, once, at the
// decode boundary; nothing above this package looks at the legacy names.

func (s *QuizSession) UnmarshalJSON(data []byte) error {
	type alias QuizSession
	aux := struct {
		*alias
		QuestionSet string `json:"questionSet"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.QuestionSetCode == "" {
		s.QuestionSetCode = aux.QuestionSet
	}
	if s.TotalQuestions == 0 {
		s.TotalQuestions = len(s.Questions)
	}
	return nil
}

func (q *Question) UnmarshalJSON(data []byte) error {
	type alias Question
	aux := struct {
		*alias
		QuestionText string `json:"questionText"`
	}{alias: (*alias)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if q.Text == "" {
		q.Text = aux.QuestionText
	}
	return nil
}

func (c *Choice) UnmarshalJSON(data []byte) error {
	type alias Choice
	aux := struct {
		*alias
		ChoiceLabel string `json:"choiceLabel"`
		ChoiceText  string `json:"choiceText"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if c.Label == "" {
		c.Label = aux.ChoiceLabel
	}
	if c.Text == "" {
		c.Text = aux.ChoiceText
	}
	return nil
}
