package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"

	"github.com/donlopez/quiz-client/internal/mockapi"
	"github.com/donlopez/quiz-client/internal/router"
)

// quizd serves the built-in quiz API locally so the client can be exercised
// without the production backend.
func main() {
	viper.SetConfigName("quizd")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("QUIZD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", ":9090")
	viper.SetDefault("server.jwt_secret", "dev-only-secret")
	viper.SetDefault("server.require_verification", false)
	viper.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("no quizd.yaml found, relying on defaults and environment")
		} else {
			log.Fatalf("failed to read config file: %s", err)
		}
	}

	srv := mockapi.NewServer(viper.GetString("server.jwt_secret"))
	srv.RequireVerification = viper.GetBool("server.require_verification")
	srv.SeedUser("demo", "demo@example.com", "Beautifulday24")

	r := router.SetupRouter(srv, viper.GetStringSlice("cors.allowed_origins"))

	port := viper.GetString("server.port")
	fmt.Printf("quizd listening on http://localhost%s\n", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("quizd failed to start: %s", err)
	}
}
