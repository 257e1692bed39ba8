package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/donlopez/quiz-client/internal/mockapi"
)

// SetupRouter wires the local quiz API onto a gin engine. The route table
// mirrors the production backend exactly, so the client cannot tell the two
// apart.
func SetupRouter(srv *mockapi.Server, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", "Content-Type", "X-Request-Id")
	r.Use(cors.New(config))

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", srv.LoginHandler)
		authGroup.POST("/register", srv.RegisterHandler)
		authGroup.POST("/verify", srv.VerifyHandler)
	}

	quizGroup := r.Group("/api/quiz")
	quizGroup.Use(srv.AuthRequired)
	{
		quizGroup.POST("/start", srv.StartHandler)
		quizGroup.GET("/session/:id", srv.SessionHandler)
		quizGroup.POST("/submit", srv.SubmitHandler)
		quizGroup.POST("/finish/:id", srv.FinishHandler)
	}

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	return r
}
