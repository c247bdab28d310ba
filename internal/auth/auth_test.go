package auth

import (
	"context"
	"testing"

	"github.com/gdg-garage/garage-meetup-api/internal/config"
	"github.com/gdg-garage/garage-meetup-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestHandleMe(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	db.AutoMigrate(&models.User{})

	user := models.User{
		DiscordID: "123456",
		Username:  "testuser",
		Email:     "test@example.com",
		Avatar:    "avatar_url",
	}
	db.Create(&user)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	t.Run("Authenticated", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), UserIDKey, user.ID)
		resp, err := handler.HandleMe(ctx, &struct{}{})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}

		if resp.Body.Username != user.Username {
			t.Errorf("expected username %s, got %s", user.Username, resp.Body.Username)
		}
		if resp.Body.Email != user.Email {
			t.Errorf("expected email %s, got %s", user.Email, resp.Body.Email)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, err := handler.HandleMe(context.Background(), &struct{}{})
		if err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), UserIDKey, uint(9999))
		_, err := handler.HandleMe(ctx, &struct{}{})
		if err == nil {
			t.Fatal("expected error for unknown user, got nil")
		}
	})
}
