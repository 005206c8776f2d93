package services

import (
	"context"
	"testing"

	"github.com/mockview-ai/backend/repository"
)

func TestSeedDemoUserIsIdempotent(t *testing.T) {
	store := repository.NewMemoryRepository()
	ctx := context.Background()

	if err := SeedDemoUser(ctx, store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	first, err := store.GetUserByEmail(ctx, demoUserEmail)
	if err != nil || first == nil {
		t.Fatalf("demo user missing after seed: %v", err)
	}

	if err := SeedDemoUser(ctx, store); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	second, _ := store.GetUserByEmail(ctx, demoUserEmail)
	if second.ID != first.ID {
		t.Errorf("second seed replaced the demo user")
	}
}
