package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func guarded(t *testing.T, mgr *JWTManager, roles ...string) (http.Handler, *string) {
	t.Helper()
	var seen string
	return Middleware(mgr, roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = NameFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})), &seen
}

func call(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tournaments", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareStoresClaims(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	token, _ := mgr.GenerateToken("santa", RoleOperator)
	h, seen := guarded(t, mgr)

	rec := call(h, "Bearer "+token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if *seen != "santa" {
		t.Errorf("name in context = %q, want santa", *seen)
	}
}

func TestMiddlewareUnauthorized(t *testing.T) {
	h, seen := guarded(t, NewJWTManager("test-secret"))

	tests := []struct {
		name   string
		header string
		body   string
	}{
		{"missing header", "", `{"error":"missing authorization header"}`},
		{"other scheme", "Token abc123", `{"error":"invalid authorization format"}`},
		{"scheme only", "Bearer", `{"error":"invalid authorization format"}`},
		{"blank token", "Bearer   ", `{"error":"invalid authorization format"}`},
		{"bad token", "Bearer invalid.jwt.token", `{"error":"invalid or expired token"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(h, tt.header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if rec.Body.String() != tt.body {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.body)
			}
			if *seen != "" {
				t.Error("next handler should not run")
			}
		})
	}
}

func TestMiddlewareRoles(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	h, _ := guarded(t, mgr, RoleOperator)

	for role, want := range map[string]int{
		RoleOperator:  http.StatusNoContent,
		RoleSpectator: http.StatusForbidden,
	} {
		token, _ := mgr.GenerateToken("someone", role)
		if rec := call(h, "bearer "+token); rec.Code != want {
			t.Errorf("%s: status = %d, want %d", role, rec.Code, want)
		}
	}
}

func TestClaimsFromContext(t *testing.T) {
	if NameFromContext(context.Background()) != "" {
		t.Error("expected empty name without auth")
	}
	ctx := WithClaims(context.Background(), &Claims{Name: "elf", Role: RoleSpectator})
	if c := ClaimsFromContext(ctx); c == nil || c.Role != RoleSpectator {
		t.Errorf("unexpected claims: %+v", c)
	}
}
