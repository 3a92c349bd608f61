package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func gateTestRouter(tokens *TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/hard", RequireAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": currentClaims(c).UserID})
	})
	r.GET("/soft", OptionalAuth(tokens), func(c *gin.Context) {
		claims := currentClaims(c)
		c.JSON(http.StatusOK, gin.H{"anonymous": claims == nil})
	})
	return r
}

func TestRequireAuthMissingToken(t *testing.T) {
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	r := gateTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/hard", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	r := gateTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/hard", nil)
	req.Header.Set("Authorization", "not-a-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	r := gateTestRouter(tokens)

	raw, err := tokens.Issue(User{ID: 7, Email: "a@b.com", Name: "A"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/hard", nil)
	req.Header.Set("Authorization", raw)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestOptionalAuth(t *testing.T) {
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	r := gateTestRouter(tokens)

	raw, err := tokens.Issue(User{ID: 7, Email: "a@b.com", Name: "A"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	cases := []struct {
		name      string
		header    string
		anonymous bool
	}{
		{"no token", "", true},
		{"invalid token", "garbage", true},
		{"valid token", raw, false},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/soft", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.name, w.Code)
		}
		want := `"anonymous":true`
		if !tc.anonymous {
			want = `"anonymous":false`
		}
		if body := w.Body.String(); !strings.Contains(body, want) {
			t.Fatalf("%s: body %s missing %s", tc.name, body, want)
		}
	}
}
