package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	require.Equal(t, "aicp-web version dev\n", out.String())
}

func TestProjectsListCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/sign-in", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":          map[string]string{"id": "u1", "username": "alice"},
			"access_token":  "opaque-access",
			"refresh_token": "opaque-refresh",
		})
	})
	mux.HandleFunc("GET /api/projects/{$}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer opaque-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "p1", "name": "Demo"}})
	})
	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)

	t.Setenv("AICP_API_HOST", backend.URL)
	t.Setenv("ENV", "TEST")
	t.Setenv("SESSION_STORE", "memory")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"projects", "list", "-u", "alice", "-p", "secret"})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "p1")
	require.Contains(t, out.String(), "Demo")
}

func TestProjectsListCommand_RequiresCredentials(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"projects", "list"})
	require.Error(t, root.Execute())
}
