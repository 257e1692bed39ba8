package auth

import (
	"context"
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/donlopez/quiz-client/internal/client"
	"github.com/donlopez/quiz-client/internal/model"
	"github.com/donlopez/quiz-client/internal/session"
)

// AuthError reports a successful HTTP exchange whose body is missing an
// expected credential field.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "auth: " + e.Reason
}

// RegisterResult tags the three response shapes the register endpoint can
// produce. Callers branch on the tag instead of probing raw fields.
type RegisterResult int

const (
	// RegisterAutoLogin means a token came back and is already stored.
	RegisterAutoLogin RegisterResult = iota
	// RegisterVerificationRequired means the user must confirm their email
	// before logging in. No credential is stored.
	RegisterVerificationRequired
	// RegisterCreated means the account exists but the user must log in
	// manually. No credential is stored.
	RegisterCreated
)

type RegisterOutcome struct {
	Result  RegisterResult
	Token   string
	Message string
}

// LoginResponse is the full login payload; Token is the coalesced credential
// taken from whichever of the two field names the backend used.
type LoginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type VerifyResponse struct {
	Message string `json:"message"`
}

type AuthService struct {
	api      *client.Client
	sessions *session.Store
	validate *validator.Validate
}

func NewAuthService(api *client.Client, sessions *session.Store) *AuthService {
	return &AuthService{
		api:      api,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Login authenticates and stores the returned credential. A 2xx response
// without a token field is an *AuthError and nothing is stored.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := loginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return nil, model.WrapValidator(err)
	}

	var resp LoginResponse
	if err := s.api.Do(ctx, "POST", "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}

	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		return nil, &AuthError{Reason: "login response did not include token"}
	}
	if err := s.sessions.Set(token); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. Username is optional and omitted from the
// payload when empty. The outcome tag tells the caller what to do next; the
// flow itself never decides navigation.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*RegisterOutcome, error) {
	req := registerRequest{Username: username, Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return nil, model.WrapValidator(err)
	}

	var resp struct {
		Token                string `json:"token"`
		AccessToken          string `json:"accessToken"`
		VerificationRequired bool   `json:"verificationRequired"`
		Message              string `json:"message"`
	}
	if err := s.api.Do(ctx, "POST", "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}

	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	switch {
	case token != "":
		if err := s.sessions.Set(token); err != nil {
			return nil, err
		}
		return &RegisterOutcome{Result: RegisterAutoLogin, Token: token, Message: resp.Message}, nil
	case resp.VerificationRequired:
		return &RegisterOutcome{Result: RegisterVerificationRequired, Message: resp.Message}, nil
	default:
		return &RegisterOutcome{Result: RegisterCreated, Message: resp.Message}, nil
	}
}

// Verify redeems an email-verification token.
func (s *AuthService) Verify(ctx context.Context, token string) (*VerifyResponse, error) {
	req := verifyRequest{Token: token}
	if err := s.validate.Struct(req); err != nil {
		return nil, model.WrapValidator(err)
	}
	var resp VerifyResponse
	if err := s.api.Do(ctx, "POST", "/api/auth/verify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout clears the stored credential. No network call, always succeeds.
func (s *AuthService) Logout() {
	if err := s.sessions.Clear(); err != nil {
		log.Printf("[Auth] failed to clear credential on logout: %v", err)
	}
}

// LoggedIn reports whether a usable credential is currently stored.
func (s *AuthService) LoggedIn() bool {
	return s.sessions.Token() != ""
}
