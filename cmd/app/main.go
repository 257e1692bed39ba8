package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/donlopez/quiz-client/internal/auth"
	"github.com/donlopez/quiz-client/internal/client"
	"github.com/donlopez/quiz-client/internal/service"
	"github.com/donlopez/quiz-client/internal/session"
	"github.com/donlopez/quiz-client/internal/ui"
)

func main() {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("QUIZ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api.base_url", "http://localhost:9090")
	viper.SetDefault("api.timeout_seconds", 15)
	viper.SetDefault("api.on_unauthorized", string(client.UnauthorizedForceLogout))
	viper.SetDefault("session.token_path", defaultTokenPath())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("no config.yaml found, relying on defaults and environment")
		} else {
			log.Fatalf("failed to read config file: %s", err)
		}
	}

	sessions, err := session.NewStore(viper.GetString("session.token_path"))
	if err != nil {
		log.Fatalf("failed to open session store: %s", err)
	}

	policy := client.UnauthorizedPolicy(viper.GetString("api.on_unauthorized"))
	if policy != client.UnauthorizedIgnore && policy != client.UnauthorizedForceLogout {
		log.Fatalf("invalid api.on_unauthorized value: %q (want %q or %q)",
			policy, client.UnauthorizedIgnore, client.UnauthorizedForceLogout)
	}

	api := client.NewClient(
		viper.GetString("api.base_url"),
		viper.GetInt("api.timeout_seconds"),
		sessions,
		policy,
	)
	api.OnForceLogout = func() {
		log.Println("credential rejected by the server, you have been logged out")
	}

	authService := auth.NewAuthService(api, sessions)
	quizService := service.NewQuizService(api)

	app := ui.New(os.Stdin, os.Stdout, authService, quizService)
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("quiz client exited: %s", err)
	}
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".quiz-client", "session.json")
}
