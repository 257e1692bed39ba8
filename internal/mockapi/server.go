package mockapi

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/donlopez/quiz-client/internal/model"
)

// Server is an in-process implementation of the quiz API the client talks
// to. Integration tests run against it, and cmd/quizd serves it standalone
// so the client can be developed without the real backend.
type Server struct {
	jwtSecret []byte
	tokenTTL  time.Duration

	// RequireVerification makes register answer with the
	// verificationRequired shape instead of a plain created message.
	RequireVerification bool
	// AutoLogin makes register hand back a token directly.
	AutoLogin bool

	mu          sync.Mutex
	users       map[string]*userRecord
	sessions    map[int64]*sessionRecord
	nextSession int64
	banks       map[string][]bankQuestion
}

type userRecord struct {
	Username    string
	Email       string
	Password    string
	Verified    bool
	VerifyToken string
}

type bankQuestion struct {
	ID           int64
	Text         string
	MultiCorrect bool
	Choices      []model.Choice
	Correct      []int64
	Explanation  string
}

type sessionRecord struct {
	ID         int64
	SetCode    string
	Status     string
	Score      *int
	FinishedAt *time.Time
	Questions  []bankQuestion
	Selected   map[int64][]int64
}

func NewServer(jwtSecret string) *Server {
	return &Server{
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  time.Hour,
		users:     make(map[string]*userRecord),
		sessions:  make(map[int64]*sessionRecord),
		banks:     defaultBanks(),
	}
}

// defaultBanks is the built-in question material. The practice set carries
// one multi-correct question so the single-entry answer shape gets real use.
func defaultBanks() map[string][]bankQuestion {
	return map[string][]bankQuestion{
		"practice": {
			{
				ID:   101,
				Text: "Which HTTP status code means Unauthorized?",
				Choices: []model.Choice{
					{ChoiceID: 1, Label: "A", Text: "400"},
					{ChoiceID: 2, Label: "B", Text: "401"},
					{ChoiceID: 3, Label: "C", Text: "403"},
					{ChoiceID: 4, Label: "D", Text: "404"},
				},
				Correct:     []int64{2},
				Explanation: "401 signals a missing or invalid credential.",
			},
			{
				ID:           102,
				Text:         "Which of these are HTTP request methods?",
				MultiCorrect: true,
				Choices: []model.Choice{
					{ChoiceID: 5, Label: "A", Text: "GET"},
					{ChoiceID: 6, Label: "B", Text: "FETCH"},
					{ChoiceID: 7, Label: "C", Text: "POST"},
					{ChoiceID: 8, Label: "D", Text: "SEND"},
				},
				Correct:     []int64{5, 7},
				Explanation: "GET and POST are methods; FETCH and SEND are not.",
			},
			{
				ID:   103,
				Text: "What does the Authorization: Bearer header carry?",
				Choices: []model.Choice{
					{ChoiceID: 9, Label: "A", Text: "A username"},
					{ChoiceID: 10, Label: "B", Text: "An opaque access token"},
					{ChoiceID: 11, Label: "C", Text: "A session cookie"},
				},
				Correct:     []int64{10},
				Explanation: "Bearer authentication carries an opaque token.",
			},
		},
		"official": {
			{
				ID:   201,
				Text: "Which status code family indicates success?",
				Choices: []model.Choice{
					{ChoiceID: 21, Label: "A", Text: "2xx"},
					{ChoiceID: 22, Label: "B", Text: "4xx"},
					{ChoiceID: 23, Label: "C", Text: "5xx"},
				},
				Correct: []int64{21},
			},
			{
				ID:   202,
				Text: "Which header names the payload media type?",
				Choices: []model.Choice{
					{ChoiceID: 24, Label: "A", Text: "Accept"},
					{ChoiceID: 25, Label: "B", Text: "Content-Type"},
					{ChoiceID: 26, Label: "C", Text: "Origin"},
				},
				Correct: []int64{25},
			},
		},
	}
}

// SeedUser registers a verified account directly, for tests and dev setups.
func (s *Server) SeedUser(username, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = &userRecord{
		Username: username,
		Email:    email,
		Password: password,
		Verified: true,
	}
}

func (s *Server) mintToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *Server) emailFromToken(token string) (string, bool) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

func equalIDSets(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int64]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}
