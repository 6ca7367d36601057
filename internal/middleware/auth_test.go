package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/onlineworkerske/backend/internal/auth"
	"github.com/onlineworkerske/backend/internal/config"
	"github.com/onlineworkerske/backend/internal/rbac"
	"go.uber.org/zap"
)

func TestAuthMiddlewareErrorBody(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	app := fiber.New()
	app.Get("/t", AuthMiddleware(cfg, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/t", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Fatalf("status: got %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
			}

			var body map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if msg, _ := body["message"].(string); msg == "" {
				t.Errorf("error body missing message field: %v", body)
			}
			if _, ok := body["error"]; ok {
				t.Errorf("error body carries legacy error field: %v", body)
			}
		})
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	userID := uuid.New()
	token, err := auth.GenerateJWT(cfg.JWTSecret, userID, "worker", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	app := fiber.New()
	app.Get("/t", AuthMiddleware(cfg, zap.NewNop()), func(c *fiber.Ctx) error {
		if GetUserID(c) != userID {
			t.Errorf("user id local: got %s, want %s", GetUserID(c), userID)
		}
		if GetUserRole(c) != "worker" {
			t.Errorf("role local: got %q, want %q", GetUserRole(c), "worker")
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/t", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		permission string
		wantStatus int
	}{
		{"worker cannot release escrow", "worker", rbac.PermReleaseEscrow, fiber.StatusForbidden},
		{"employer releases escrow", "employer", rbac.PermReleaseEscrow, fiber.StatusOK},
		{"admin releases escrow", "admin", rbac.PermReleaseEscrow, fiber.StatusOK},
		{"employer cannot request payout", "employer", rbac.PermRequestPayout, fiber.StatusForbidden},
		{"worker requests payout", "worker", rbac.PermRequestPayout, fiber.StatusOK},
		{"unknown role denied", "ghost", rbac.PermRequestPayout, fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/t",
				func(c *fiber.Ctx) error {
					c.Locals(CtxUserRole, tt.role)
					return c.Next()
				},
				RequirePermission(tt.permission),
				func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
			)

			resp, err := app.Test(httptest.NewRequest("GET", "/t", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus == fiber.StatusForbidden {
				var body map[string]any
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if msg, _ := body["message"].(string); msg == "" {
					t.Errorf("error body missing message field: %v", body)
				}
			}
		})
	}
}
