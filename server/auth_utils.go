package server

import (
	"net/http"
	"net/url"
	"strings"
)

// sessionCookieName is the cookie carrying the signed-in session id
const sessionCookieName = "aicp_session"

func (s *Server) SetLoginSessionCookie(w http.ResponseWriter, sessionID string, r *http.Request, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.SetLoginSessionCookie(w, "", r, -1)
}

// redirectToLogin sends the browser to the login page, remembering where it was going
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request, errorMsg string) {
	q := url.Values{}
	if r.Method == http.MethodGet && !isHTMXRequest(r) {
		q.Set("next", r.URL.RequestURI())
	}
	if errorMsg != "" {
		q.Set("error", errorMsg)
	}

	target := RouteLogin
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	redirectSuccess(w, r, target)
}

// safeRedirect only allows local absolute paths as post-login targets
func safeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	redirectSuccess(w, r, path+sep+"error="+url.QueryEscape(errorMsg))
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
