package ui

import (
	"context"
	"io"

	"github.com/donlopez/quiz-client/internal/auth"
)

// AuthMenu is the entry point for users without a credential. Returns
// quit=true when the user wants out of the program.
func (u *UI) AuthMenu(ctx context.Context) (quit bool, err error) {
	u.printf("\n=== Quiz Client ===\n1) Login\n2) Register\n3) Verify email\n4) Quit\n")
	choice, err := u.prompt("Select")
	if err != nil {
		if err == io.EOF {
			return true, nil
		}
		return false, err
	}

	switch choice {
	case "1":
		u.LoginPage(ctx)
	case "2":
		u.RegisterPage(ctx)
	case "3":
		u.VerifyEmailPage(ctx)
	case "4":
		return true, nil
	default:
		u.printf("Unknown option %q\n", choice)
	}
	return false, nil
}

func (u *UI) LoginPage(ctx context.Context) {
	email, err := u.prompt("Email")
	if err != nil {
		return
	}
	password, err := u.prompt("Password")
	if err != nil {
		return
	}

	if _, err := u.auth.Login(ctx, email, password); err != nil {
		u.showError(err, "Login failed. Please check credentials.")
		return
	}
	u.printf("Logged in.\n")
}

func (u *UI) RegisterPage(ctx context.Context) {
	username, err := u.prompt("Username (optional)")
	if err != nil {
		return
	}
	email, err := u.prompt("Email")
	if err != nil {
		return
	}
	password, err := u.prompt("Password (at least 10 chars)")
	if err != nil {
		return
	}

	check := auth.CheckPassword(password)
	u.printf("Password strength: %s\n", check.Strength)
	if !check.OK {
		u.printf("! Password is too weak: need 10+ characters, a lowercase letter and a number.\n")
		return
	}

	outcome, err := u.auth.Register(ctx, username, email, password)
	if err != nil {
		u.showError(err, "Registration failed.")
		return
	}

	// Navigation branches on the outcome tag, as the flow only reports
	// which of the three register shapes came back.
	switch outcome.Result {
	case auth.RegisterAutoLogin:
		u.printf("Account created and logged in.\n")
	case auth.RegisterVerificationRequired:
		u.printf("Account created! Check your email for a verification token before logging in.\n")
	case auth.RegisterCreated:
		u.printf("Account created! Please log in.\n")
	}
}

func (u *UI) VerifyEmailPage(ctx context.Context) {
	token, err := u.prompt("Verification token")
	if err != nil {
		return
	}
	resp, err := u.auth.Verify(ctx, token)
	if err != nil {
		u.showError(err, "Verification failed.")
		return
	}
	if resp.Message != "" {
		u.printf("%s\n", resp.Message)
	} else {
		u.printf("Verified! You can log in now.\n")
	}
}
