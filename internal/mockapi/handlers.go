package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"

	"github.com/donlopez/quiz-client/internal/model"
)

type registerBody struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type verifyBody struct {
	Token string `json:"token" binding:"required"`
}

type startBody struct {
	QuestionSetCode string `json:"questionSetCode" binding:"required"`
	Limit           int    `json:"limit" binding:"required,gt=0"`
}

type submitBody struct {
	SessionID int64          `json:"sessionId" binding:"required"`
	Answers   []model.Answer `json:"answers" binding:"required,min=1"`
}

func (s *Server) RegisterHandler(c *gin.Context) {
	var req registerBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		c.JSON(http.StatusConflict, gin.H{"message": "email already registered"})
		return
	}

	user := &userRecord{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Verified: !s.RequireVerification,
	}
	s.users[req.Email] = user

	switch {
	case s.RequireVerification:
		user.VerifyToken = uuid.NewV4().String()
		c.JSON(http.StatusCreated, gin.H{
			"verificationRequired": true,
			"message":              "account created, check your email for a verification token",
			"verifyToken":          user.VerifyToken,
		})
	case s.AutoLogin:
		token, err := s.mintToken(req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to issue token"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"token": token})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "account created, please log in"})
	}
}

func (s *Server) LoginHandler(c *gin.Context) {
	var req loginBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	s.mu.Lock()
	user, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || user.Password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		return
	}
	if !user.Verified {
		c.JSON(http.StatusForbidden, gin.H{"message": "email not verified"})
		return
	}

	token, err := s.mintToken(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) VerifyHandler(c *gin.Context) {
	var req verifyBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "token is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.VerifyToken != "" && user.VerifyToken == req.Token {
			user.Verified = true
			user.VerifyToken = ""
			c.JSON(http.StatusOK, gin.H{"message": "email verified, you can log in now"})
			return
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "unknown verification token"})
}

// AuthRequired guards the quiz endpoints with bearer-token auth.
func (s *Server) AuthRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
		return
	}
	email, ok := s.emailFromToken(token)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
		return
	}
	s.mu.Lock()
	_, known := s.users[email]
	s.mu.Unlock()
	if !known {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unknown account"})
		return
	}
	c.Next()
}

func (s *Server) StartHandler(c *gin.Context) {
	var req startBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "questionSetCode and a positive limit are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	bank, ok := s.banks[req.QuestionSetCode]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown question set: " + req.QuestionSetCode})
		return
	}

	n := req.Limit
	if n > len(bank) {
		n = len(bank)
	}
	s.nextSession++
	rec := &sessionRecord{
		ID:        s.nextSession,
		SetCode:   req.QuestionSetCode,
		Status:    model.StatusInProgress,
		Questions: bank[:n],
		Selected:  make(map[int64][]int64),
	}
	s.sessions[rec.ID] = rec

	c.JSON(http.StatusCreated, gin.H{
		"sessionId":       rec.ID,
		"questionSetCode": rec.SetCode,
		"totalQuestions":  len(rec.Questions),
	})
}

func (s *Server) SessionHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid session id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sessionJSON(rec))
}

func (s *Server) SubmitHandler(c *gin.Context) {
	var req submitBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "sessionId and a non-empty answers list are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[req.SessionID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
		return
	}
	if rec.Status == model.StatusFinished {
		c.JSON(http.StatusConflict, gin.H{"message": "session is already finished"})
		return
	}

	known := make(map[int64]bool, len(rec.Questions))
	for _, q := range rec.Questions {
		known[q.ID] = true
	}
	seen := make(map[int64]bool, len(req.Answers))
	for _, a := range req.Answers {
		if !known[a.QuestionID] {
			c.JSON(http.StatusBadRequest, gin.H{"message": "answer references a question outside this session"})
			return
		}
		if seen[a.QuestionID] {
			c.JSON(http.StatusBadRequest, gin.H{"message": "duplicate answer entry for one question"})
			return
		}
		seen[a.QuestionID] = true
	}

	// Repeated submissions for a question replace the earlier one.
	for _, a := range req.Answers {
		ids := make([]int64, len(a.SelectedChoiceIDs))
		copy(ids, a.SelectedChoiceIDs)
		rec.Selected[a.QuestionID] = ids
	}
	c.JSON(http.StatusOK, gin.H{"recorded": len(req.Answers)})
}

func (s *Server) FinishHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid session id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
		return
	}
	if rec.Status == model.StatusFinished {
		c.JSON(http.StatusConflict, gin.H{"message": "session is already finished"})
		return
	}

	score := 0
	for _, q := range rec.Questions {
		if equalIDSets(rec.Selected[q.ID], q.Correct) {
			score++
		}
	}
	now := time.Now().UTC()
	rec.Status = model.StatusFinished
	rec.Score = &score
	rec.FinishedAt = &now

	c.JSON(http.StatusOK, sessionJSON(rec))
}

// sessionJSON renders a session. Questions still go out under the legacy
// questionText/choiceLabel/choiceText names the first backend generation
// used; the client normalizes them at decode time. Correctness data only
// appears once the session is finished.
func sessionJSON(rec *sessionRecord) gin.H {
	finished := rec.Status == model.StatusFinished

	questions := make([]gin.H, 0, len(rec.Questions))
	for _, q := range rec.Questions {
		choices := make([]gin.H, 0, len(q.Choices))
		for _, ch := range q.Choices {
			choices = append(choices, gin.H{
				"choiceId":    ch.ChoiceID,
				"choiceLabel": ch.Label,
				"choiceText":  ch.Text,
			})
		}
		qJSON := gin.H{
			"questionId":   q.ID,
			"questionText": q.Text,
			"multiCorrect": q.MultiCorrect,
			"choices":      choices,
		}
		if selected, ok := rec.Selected[q.ID]; ok {
			qJSON["selectedChoiceIds"] = selected
		}
		if finished {
			qJSON["correctChoiceIds"] = q.Correct
			if q.Explanation != "" {
				qJSON["explanation"] = q.Explanation
			}
		}
		questions = append(questions, qJSON)
	}

	out := gin.H{
		"sessionId":       rec.ID,
		"questionSetCode": rec.SetCode,
		"totalQuestions":  len(rec.Questions),
		"status":          rec.Status,
		"questions":       questions,
	}
	if rec.Score != nil {
		out["score"] = *rec.Score
	}
	if rec.FinishedAt != nil {
		out["finishedAt"] = rec.FinishedAt.Format(time.RFC3339)
	}
	return out
}
