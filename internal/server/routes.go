package server

import "net/http"

// registerRoutes wires all REST endpoints.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Public
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/posts", s.handlePosts)
	mux.HandleFunc("/api/posts/", s.handlePost)
	mux.HandleFunc("/api/contact", s.handleContact)

	// Admin
	mux.HandleFunc("/api/admin/login", s.handleAdminLogin)
	mux.HandleFunc("/api/admin/messages", s.requireAdmin(s.handleAdminMessages))
	mux.HandleFunc("/api/admin/linkedin/status", s.requireAdmin(s.handleLinkedInStatus))
	mux.HandleFunc("/api/admin/linkedin/connect", s.requireAdmin(s.handleLinkedInConnect))
	mux.HandleFunc("/api/admin/linkedin/disconnect", s.requireAdmin(s.handleLinkedInDisconnect))
	mux.HandleFunc("/api/admin/linkedin/publish", s.requireAdmin(s.handleLinkedInPublish))

	// The OAuth callback is hit by a browser redirect from the platform and
	// carries no bearer token; the one-time state is what authenticates it.
	mux.HandleFunc("/api/admin/linkedin/callback", s.handleLinkedInCallback)
}
