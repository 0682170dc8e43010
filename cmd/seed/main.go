// Command seed bootstraps an admin user so a fresh deployment has at
// least one account able to reach the admin surface.
package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/gatehouse/config"
	database "github.com/duynhne/gatehouse/internal/core"
	"github.com/duynhne/gatehouse/internal/core/domain"
)

func main() {
	cfg := config.Load()
	if cfg.Database.URL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	email := getEnv("ADMIN_EMAIL", "admin@example.com")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal().Msg("ADMIN_PASSWORD is required; refusing to seed a default password")
	}
	name := getEnv("ADMIN_NAME", "Admin User")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	// Idempotent: re-running promotes an existing account instead of
	// failing on the unique email.
	query := `
		INSERT INTO users (id, email, name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET role = EXCLUDED.role, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := pool.Exec(ctx, query, uuid.New().String(), email, name, string(hash), domain.RoleAdmin); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin user")
	}

	log.Info().Str("email", email).Msg("Admin user ready")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
