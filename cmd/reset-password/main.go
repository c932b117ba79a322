package main

import (
	"context"
	"os"

	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/service"
	"deposito-pos/pkg/config"
	"deposito-pos/pkg/database"
	applog "deposito-pos/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Usage: reset-password [email] [new-password]
// Defaults to the setup administrator and its initial password.
func main() {
	// 1. Load Env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	applog.New(applog.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if envErr != nil {
		log.Warn().Msg(".env file not found, relying on system env")
	}

	email := service.DefaultAdminEmail
	newPassword := service.DefaultAdminPassword
	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if len(os.Args) > 2 {
		newPassword = os.Args[2]
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.DB, cfg.App.Timezone, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	accounts := repository.NewAccountRepo(db)
	ctx := context.Background()

	// 3. Find account
	account, err := accounts.FindByEmail(ctx, email)
	if err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("account not found")
	}

	// 4. Hash new password
	var hashed model.Account
	if err := hashed.SetPassword(newPassword); err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	// 5. Update and end every open session
	if err := accounts.UpdatePassword(ctx, account.ID, hashed.PasswordHash); err != nil {
		log.Fatal().Err(err).Msg("update password")
	}
	if err := accounts.UpdateTokenVersion(ctx, account.ID, uuid.NewString()); err != nil {
		log.Fatal().Err(err).Msg("revoke sessions")
	}

	log.Info().Str("email", email).Msg("password reset")
}
