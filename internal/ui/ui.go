package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/donlopez/quiz-client/internal/auth"
	"github.com/donlopez/quiz-client/internal/client"
	"github.com/donlopez/quiz-client/internal/model"
	"github.com/donlopez/quiz-client/internal/service"
)

// UI runs the terminal pages. Every page calls the flows, renders the
// outcome, and decides where to go next; flows never drive navigation.
type UI struct {
	in   *bufio.Scanner
	out  io.Writer
	auth *auth.AuthService
	quiz *service.QuizService
}

func New(in io.Reader, out io.Writer, authSvc *auth.AuthService, quizSvc *service.QuizService) *UI {
	return &UI{
		in:   bufio.NewScanner(in),
		out:  out,
		auth: authSvc,
		quiz: quizSvc,
	}
}

// Run is the page loop. Quiz pages are guarded: without a stored credential
// the user lands on the auth menu.
func (u *UI) Run(ctx context.Context) error {
	for {
		if !u.auth.LoggedIn() {
			quit, err := u.AuthMenu(ctx)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			continue
		}

		stop, err := u.SelectTestPage(ctx)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

func (u *UI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

func (u *UI) prompt(label string) (string, error) {
	u.printf("%s: ", label)
	if !u.in.Scan() {
		if err := u.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(u.in.Text()), nil
}

func (u *UI) showError(err error, fallback string) {
	u.printf("! %s\n", ErrorMessage(err, fallback))
}

// ErrorMessage derives user-facing text from a flow error: a server-supplied
// message field wins, then the given fallback, then the raw error text.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) {
		if msg := reqErr.Message(); msg != "" {
			return msg
		}
		if fallback != "" {
			return fallback
		}
		return reqErr.Error()
	}
	var valErr *model.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
