package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/74Thirsty/cloudchain/backend"
)

func tokenWorkspace(t *testing.T) (backend.Workspace, string) {
	t.Helper()
	ws := backend.NewWorkspace(t.TempDir())
	const account = "mybackup001.cloudchain"
	if _, err := ws.EnsureAccountDir(account); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	return ws, account
}

func TestTokenProvider_FreshToken(t *testing.T) {
	ws, account := tokenWorkspace(t)
	if err := SaveToken(ws.TokenPath(account), Token{
		AccessToken: "fresh",
		Expiry:      time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("save token: %v", err)
	}

	got, err := NewTokenProvider(ws, nil).Token(context.Background(), account)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != "fresh" {
		t.Fatalf("got %q", got)
	}
}

func TestTokenProvider_RefreshesExpired(t *testing.T) {
	ws, account := tokenWorkspace(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "refresh-1" {
			t.Errorf("unexpected form %v", r.Form)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "renewed",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(srv.Close)

	if err := ScaffoldClientSecret(ws.ClientSecretPath()); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	if err := SaveToken(ws.TokenPath(account), Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		TokenURI:     srv.URL,
		Expiry:       time.Now().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("save token: %v", err)
	}

	got, err := NewTokenProvider(ws, srv.Client()).Token(context.Background(), account)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != "renewed" {
		t.Fatalf("got %q", got)
	}

	// The refreshed token is persisted for the next invocation.
	var stored Token
	if _, err := toml.DecodeFile(ws.TokenPath(account), &stored); err != nil {
		t.Fatalf("decode stored token: %v", err)
	}
	if stored.AccessToken != "renewed" || stored.RefreshToken != "refresh-1" {
		t.Fatalf("stored token %+v", stored)
	}
	if !stored.Expiry.After(time.Now()) {
		t.Fatalf("stored expiry not advanced: %v", stored.Expiry)
	}
}

func TestTokenProvider_MissingTokenFile(t *testing.T) {
	ws, account := tokenWorkspace(t)
	_, err := NewTokenProvider(ws, nil).Token(context.Background(), account)
	if err == nil || !strings.Contains(err.Error(), "sign in") {
		t.Fatalf("expected provisioning guidance, got %v", err)
	}
}

func TestScaffoldClientSecret(t *testing.T) {
	ws, _ := tokenWorkspace(t)
	if err := ScaffoldClientSecret(ws.ClientSecretPath()); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	secret, err := LoadClientSecret(ws.ClientSecretPath())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if secret.ClientID == "" || secret.TokenURI == "" {
		t.Fatalf("incomplete scaffold %+v", secret)
	}
	// Scaffolding again must not clobber an existing file.
	if err := ScaffoldClientSecret(ws.ClientSecretPath()); err != nil {
		t.Fatalf("second scaffold: %v", err)
	}
}
