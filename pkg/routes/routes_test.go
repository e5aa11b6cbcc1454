package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yukiapp/yuki-server/pkg/auth"
	"github.com/yukiapp/yuki-server/pkg/reserved"
)

func TestClassify(t *testing.T) {
	classifier := NewClassifier(reserved.MustLoad())

	tests := []struct {
		path string
		want Class
	}{
		// Reserved route prefixes, including nested paths under them.
		{"/health", Reserved},
		{"/metrics", Reserved},
		{"/wallet", Reserved},
		{"/wallet/envelope", Reserved},
		{"/profile/alice", Reserved},
		{"/.well-known/apple-app-site-association", Reserved},
		{"/WALLET", Reserved},

		// Single lowercase segments read as public profile handles.
		{"/alice", PublicProfile},
		{"/alice_01", PublicProfile},
		{"/alice/", PublicProfile},

		// Reserved words in handle position stay reserved.
		{"/about", Reserved},
		{"/admin", Reserved},

		// Everything else requires identity.
		{"/", Protected},
		{"/Alice", Protected},
		{"/alice/posts", Protected},
		{"/favicon.ico", Protected},
		{"/walletx", PublicProfile},
	}

	for _, tt := range tests {
		if got := classifier.Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestSingleSegment(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/alice", "alice", true},
		{"/alice/", "alice", true},
		{"alice", "alice", true},
		{"/", "", false},
		{"", "", false},
		{"/a/b", "", false},
	}

	for _, tt := range tests {
		got, ok := singleSegment(tt.path)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("singleSegment(%q) = (%q, %v), want (%q, %v)",
				tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}

func testGuard(t *testing.T) (*auth.Guard, string, uuid.UUID) {
	t.Helper()
	issuer := auth.NewTokenIssuer("test-secret", "yuki", time.Hour)
	userID := uuid.New()
	token, _, err := issuer.Issue(userID)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	resolve := func(_ context.Context, _ string) (uuid.UUID, error) {
		return userID, nil
	}
	return auth.NewGuard(issuer, resolve), token, userID
}

func TestAdmission(t *testing.T) {
	classifier := NewClassifier(reserved.MustLoad())
	guard, token, userID := testGuard(t)

	var sawUserID *uuid.UUID
	handler := Admission(classifier, guard, "/login")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawUserID = nil
			if id, ok := auth.UserIDFromContext(r.Context()); ok {
				sawUserID = &id
			}
			w.WriteHeader(http.StatusOK)
		}))

	t.Run("reserved path passes without identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if sawUserID != nil {
			t.Fatalf("unexpected identity on anonymous request")
		}
	})

	t.Run("public profile passes without identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alice", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("protected path redirects anonymous to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Settings/keys", nil))
		if rec.Code != http.StatusTemporaryRedirect {
			t.Fatalf("status = %d", rec.Code)
		}
		loc, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatalf("bad redirect location: %v", err)
		}
		if loc.Path != "/login" || loc.Query().Get("return_to") != "/Settings/keys" {
			t.Fatalf("unexpected redirect target: %s", rec.Header().Get("Location"))
		}
	})

	t.Run("protected path passes with bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/some/protected/path", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if sawUserID == nil || *sawUserID != userID {
			t.Fatalf("identity not attached: %v", sawUserID)
		}
	})

	t.Run("identity attached on reserved path when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if sawUserID == nil || *sawUserID != userID {
			t.Fatalf("identity not attached: %v", sawUserID)
		}
	})
}
