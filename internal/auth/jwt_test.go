package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateUserToken("user1", "pastor@example.com", true)
	if err != nil {
		t.Fatalf("GenerateUserToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "user1" {
		t.Errorf("Expected user1, got %s", claims.UserID)
	}
	if !claims.Admin {
		t.Error("Expected admin claim")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	handler := Middleware()(func(c echo.Context) error {
		claims := ClaimsFrom(c)
		if claims == nil || claims.UserID != "user1" {
			t.Errorf("Expected claims on context, got %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	// Missing header
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))
	if httpErr, ok := err.(*echo.HTTPError); !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for missing header, got %v", err)
	}

	// Valid token
	token, _ := GenerateUserToken("user1", "", false)
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Errorf("Expected success for valid token, got %v", err)
	}
}
