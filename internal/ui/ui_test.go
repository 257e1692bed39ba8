package ui

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/donlopez/quiz-client/internal/auth"
	"github.com/donlopez/quiz-client/internal/client"
	"github.com/donlopez/quiz-client/internal/mockapi"
	"github.com/donlopez/quiz-client/internal/model"
	"github.com/donlopez/quiz-client/internal/router"
	"github.com/donlopez/quiz-client/internal/service"
	"github.com/donlopez/quiz-client/internal/session"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{
			name:     "server message wins",
			err:      &client.RequestError{Status: 401, Payload: []byte(`{"message": "invalid email or password"}`)},
			fallback: "Login failed.",
			want:     "invalid email or password",
		},
		{
			name:     "fallback when no server message",
			err:      &client.RequestError{Status: 500, Payload: []byte(`{}`)},
			fallback: "Login failed.",
			want:     "Login failed.",
		},
		{
			name: "raw error text as last resort",
			err:  &client.RequestError{Status: 500, Method: "GET", Path: "/api/health"},
			want: "request GET /api/health returned status 500",
		},
		{
			name:     "validation errors shown verbatim",
			err:      model.NewValidationError("limit", "must be a positive integer"),
			fallback: "Failed to start quiz.",
			want:     "validation: limit: must be a positive integer",
		},
		{
			name:     "plain error uses fallback",
			err:      errors.New("boom"),
			fallback: "Something went wrong.",
			want:     "Something went wrong.",
		},
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err, tt.fallback); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseChoiceSelection(t *testing.T) {
	choices := []model.Choice{
		{ChoiceID: 1, Label: "A", Text: "one"},
		{ChoiceID: 2, Label: "B", Text: "two"},
		{ChoiceID: 3, Label: "C", Text: "three"},
	}

	tests := []struct {
		name    string
		input   string
		multi   bool
		want    []int64
		wantErr bool
	}{
		{"single letter", "B", false, []int64{2}, false},
		{"lowercase", "b", false, []int64{2}, false},
		{"multi comma separated", "a, c", true, []int64{1, 3}, false},
		{"duplicate labels collapse", "A,a", true, []int64{1}, false},
		{"unknown label", "X", false, nil, true},
		{"empty input", "", false, nil, true},
		{"two answers on single-choice question", "A,B", false, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChoiceSelection(tt.input, choices, tt.multi)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("want error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

// TestScriptedFullRun drives the whole page loop with canned keystrokes:
// login, start a one-question practice quiz, answer it correctly, read the
// results, quit.
func TestScriptedFullRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	apiSrv := mockapi.NewServer("test-secret")
	apiSrv.SeedUser("demo", "demo@example.com", "Beautifulday24")
	ts := httptest.NewServer(router.SetupRouter(apiSrv, []string{"http://localhost"}))
	defer ts.Close()

	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	api := client.NewClient(ts.URL, 5, sessions, client.UnauthorizedForceLogout)
	authSvc := auth.NewAuthService(api, sessions)
	quizSvc := service.NewQuizService(api)

	input := strings.Join([]string{
		"1",                // auth menu: login
		"demo@example.com", // email
		"Beautifulday24",   // password
		"practice",         // question set
		"1",                // limit
		"B",                // the one question's correct answer
		"quit",             // back on select page
	}, "\n") + "\n"

	var out bytes.Buffer
	app := New(strings.NewReader(input), &out, authSvc, quizSvc)
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v\noutput:\n%s", err, out.String())
	}

	output := out.String()
	for _, want := range []string{
		"Logged in.",
		"Started session 1 with 1 questions.",
		"Question 1 of 1",
		"Score: 1 / 1",
		"[Correct]",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\noutput:\n%s", want, output)
		}
	}
}
