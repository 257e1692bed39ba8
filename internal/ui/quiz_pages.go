package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/donlopez/quiz-client/internal/model"
	"github.com/donlopez/quiz-client/internal/service"
)

// SelectTestPage asks for a question set and limit, starts a session and
// runs it. Returns stop=true when the user chose to quit.
func (u *UI) SelectTestPage(ctx context.Context) (stop bool, err error) {
	u.printf("\n=== Select Test ===\nQuestion sets: practice, official\n(type 'logout' or 'quit')\n")
	code, err := u.prompt("Question set")
	if err != nil {
		if err == io.EOF {
			return true, nil
		}
		return false, err
	}
	switch code {
	case "quit":
		return true, nil
	case "logout":
		u.auth.Logout()
		u.printf("Logged out.\n")
		return false, nil
	}

	limitText, err := u.prompt(fmt.Sprintf("Number of questions (default %d)", service.DefaultLimit))
	if err != nil {
		return false, err
	}
	limit := service.DefaultLimit
	if limitText != "" {
		limit, err = strconv.Atoi(limitText)
		if err != nil {
			u.printf("! Limit must be a number.\n")
			return false, nil
		}
	}

	sess, err := u.quiz.StartQuiz(ctx, code, limit)
	if err != nil {
		u.showError(err, "Failed to start quiz.")
		return false, nil
	}
	u.printf("Started session %d with %d questions.\n", sess.SessionID, sess.TotalQuestions)

	if err := u.RunnerPage(ctx, sess.SessionID); err != nil {
		return false, err
	}
	return false, nil
}

// RunnerPage walks the questions one at a time: render, read a selection,
// submit, await, then advance. The last question finishes the session and
// shows the results page.
func (u *UI) RunnerPage(ctx context.Context, sessionID int64) error {
	sess, err := u.quiz.GetSession(ctx, sessionID)
	if err != nil {
		u.showError(err, "Failed to load quiz session.")
		return nil
	}

	for i, q := range sess.Questions {
		u.printf("\nQuestion %d of %d\n%s\n", i+1, len(sess.Questions), q.Text)
		for _, ch := range q.Choices {
			u.printf("  %s. %s\n", ch.Label, ch.Text)
		}
		label := "Answer"
		if q.MultiCorrect {
			label = "Answer (comma-separated for multiple)"
		}

		var selected []int64
		for {
			input, err := u.prompt(label)
			if err != nil {
				return nil
			}
			selected, err = ParseChoiceSelection(input, q.Choices, q.MultiCorrect)
			if err != nil {
				u.printf("! %s\n", err)
				continue
			}
			break
		}

		answer := service.BuildAnswer(q.QuestionID, selected)
		if err := u.quiz.SubmitAnswers(ctx, sessionID, []model.Answer{answer}); err != nil {
			u.showError(err, "Failed to submit answer.")
			return nil
		}
	}

	if _, err := u.quiz.FinishQuiz(ctx, sessionID); err != nil {
		u.showError(err, "Failed to finish quiz.")
		return nil
	}
	return u.ResultsPage(ctx, sessionID)
}

func (u *UI) ResultsPage(ctx context.Context, sessionID int64) error {
	sess, err := u.quiz.GetSession(ctx, sessionID)
	if err != nil {
		u.showError(err, "Failed to load results.")
		return nil
	}

	u.printf("\n=== Results: session %d (%s) ===\n", sess.SessionID, sess.QuestionSetCode)
	if sess.Score != nil {
		u.printf("Score: %d / %d\n", *sess.Score, sess.TotalQuestions)
	}
	if !sess.Finished() {
		u.printf("In progress: correct answers are hidden until the quiz is finished.\n")
		return nil
	}

	for i, q := range sess.Questions {
		verdict := "Incorrect"
		if equalIDSets(q.SelectedChoiceIDs, q.CorrectChoiceIDs) {
			verdict = "Correct"
		}
		u.printf("\n%d. %s  [%s]\n", i+1, q.Text, verdict)
		for _, ch := range q.Choices {
			marks := ""
			if containsID(q.CorrectChoiceIDs, ch.ChoiceID) {
				marks += " (correct)"
			}
			if containsID(q.SelectedChoiceIDs, ch.ChoiceID) {
				marks += " (selected)"
			}
			u.printf("  %s. %s%s\n", ch.Label, ch.Text, marks)
		}
		if q.Explanation != "" {
			u.printf("  Explanation: %s\n", q.Explanation)
		}
	}
	return nil
}

// ParseChoiceSelection maps typed labels like "A" or "a,c" to choice ids.
// Single-choice questions accept exactly one label.
func ParseChoiceSelection(input string, choices []model.Choice, multi bool) ([]int64, error) {
	parts := strings.Split(input, ",")
	var ids []int64
	for _, part := range parts {
		label := strings.TrimSpace(part)
		if label == "" {
			continue
		}
		found := false
		for _, ch := range choices {
			if strings.EqualFold(ch.Label, label) {
				if !containsID(ids, ch.ChoiceID) {
					ids = append(ids, ch.ChoiceID)
				}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no choice labelled %q", label)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("pick at least one choice")
	}
	if !multi && len(ids) > 1 {
		return nil, fmt.Errorf("this question takes a single answer")
	}
	return ids, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// equalIDSets treats an unanswered question (no selection) as incorrect.
func equalIDSets(a, b []int64) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for _, id := range a {
		if !containsID(b, id) {
			return false
		}
	}
	return true
}
