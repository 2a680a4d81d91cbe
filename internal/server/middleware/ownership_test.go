package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequireOwner(t *testing.T) {
	tests := []struct {
		name     string
		user     *AppUser
		ownerID  string
		wantCode int
	}{
		{"owner allowed", &AppUser{UserID: "owner-1", Role: "user"}, "owner-1", http.StatusOK},
		{"foreign owner forbidden", &AppUser{UserID: "owner-1", Role: "user"}, "owner-2", http.StatusForbidden},
		{"admin allowed anywhere", &AppUser{UserID: "admin-1", Role: "admin"}, "owner-2", http.StatusOK},
		{"missing user unauthorized", nil, "owner-1", http.StatusUnauthorized},
	}

	e := echo.New()
	handler := RequireOwner("owner_id")(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("owner_id")
			c.SetParamValues(tt.ownerID)
			ac := &AppContext{Context: c, App: &App{}, User: tt.user}

			if err := handler(ac); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestIsOwner(t *testing.T) {
	if IsOwner(nil, "owner-1") {
		t.Fatal("nil user must not own anything")
	}
	if !IsOwner(&AppUser{UserID: "owner-1"}, "owner-1") {
		t.Fatal("matching user must own their resources")
	}
	if IsOwner(&AppUser{UserID: "owner-1"}, "owner-2") {
		t.Fatal("mismatched user must not own foreign resources")
	}
	if !IsOwner(&AppUser{UserID: "owner-1", Role: "admin"}, "owner-2") {
		t.Fatal("admin must own everything")
	}
}
