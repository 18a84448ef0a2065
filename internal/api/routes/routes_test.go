package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/admission/internal/api/handlers"
	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/services"
)

type stubAdmins struct{ services.AdminService }

func (stubAdmins) ListSubAdmins(context.Context) ([]models.SubAdmin, error) {
	return []models.SubAdmin{{Name: "Ops", Description: "operations"}}, nil
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := services.NewTokenIssuer("test-secret", time.Hour)

	r := gin.New()
	RegisterRoutes(r, Deps{
		Tokens: tokens,
		Admins: handlers.NewAdminHandler(stubAdmins{}, nil),
	})

	bearer := func(role models.Role) string {
		tok, err := tokens.Issue("65f000000000000000000001", role, "x@example.com")
		if err != nil {
			t.Fatal(err)
		}
		return "Bearer " + tok
	}

	cases := []struct {
		name string
		auth string
		want int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"student", bearer(models.RoleStudent), http.StatusForbidden},
		{"university", bearer(models.RoleUniversity), http.StatusForbidden},
		{"admin", bearer(models.RoleAdmin), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/subadmins", nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Deps{Tokens: services.NewTokenIssuer("s", time.Hour)})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

type stubChatLogs struct{ services.ChatService }

func (stubChatLogs) RecentTurns(context.Context, int) ([]models.ChatLog, error) {
	return []models.ChatLog{{ID: "t1", Role: "user", Content: "1"}}, nil
}

func TestChatLogRoutesAreAdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := services.NewTokenIssuer("test-secret", time.Hour)

	r := gin.New()
	RegisterRoutes(r, Deps{
		Tokens: tokens,
		Chat:   handlers.NewChatHandler(stubChatLogs{}, nil, nil, nil),
	})

	for role, want := range map[models.Role]int{
		models.RoleStudent:    http.StatusForbidden,
		models.RoleUniversity: http.StatusForbidden,
		models.RoleAdmin:      http.StatusOK,
	} {
		tok, err := tokens.Issue("65f000000000000000000001", role, "x@example.com")
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/chatbot/logs", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("%s: status = %d, want %d", role, w.Code, want)
		}
	}
}
