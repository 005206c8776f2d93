package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mockview-ai/backend/models"
	"github.com/mockview-ai/backend/repository"
)

const demoUserEmail = "demo@mockview.dev"

// SeedDemoUser ensures a demo owner identity exists so local clients have a
// user to mint tokens for. Controlled by database.seed.
func SeedDemoUser(ctx context.Context, store repository.Store) error {
	existing, err := store.GetUserByEmail(ctx, demoUserEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		slog.Info("Demo user already seeded", "user_id", existing.ID)
		return nil
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    demoUserEmail,
		FullName: "Demo Candidate",
		Major:    "Computer Science",
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return err
	}

	slog.Info("Demo user seeded", "user_id", user.ID, "email", user.Email)
	return nil
}
