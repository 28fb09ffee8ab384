// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package server is the distiller's HTTP front end.
// It defines the routes, the common middlewares and the responses.
package server

import (
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"codeberg.org/readeck/distiller/configs"
	"codeberg.org/readeck/distiller/internal/metrics"
	"codeberg.org/readeck/distiller/internal/server/urls"
	"codeberg.org/readeck/distiller/pkg/http/request"
)

// Server is a wrapper around chi router.
type Server struct {
	*chi.Mux
}

// New create a new server. Routes must be added with [Server.Init]
// before calling ListenAndServe.
func New() *Server {
	s := &Server{
		chi.NewRouter(),
	}

	s.Use(
		middleware.Recoverer,
		InitRequest(),
		Logger(),
		metrics.Middleware,
		SetSecurityHeaders,
		CompressResponse,
		CannonicalPaths,
		ErrorPages,
	)

	return s
}

// Init adds the routes and initializes the template engine.
func (s *Server) Init() {
	s.AddRoute("/", indexRoutes())
	s.AddRoute("/distill", distillRoutes())
	s.AddRoute("/api/info", infoRoutes())
	s.AddRoute("/metrics", metrics.Handler())

	initTemplates()
}

// InitRequest returns a middleware that sets the absolute request URL
// and adds it to its context.
func InitRequest() func(next http.Handler) http.Handler {
	return request.InitRequest(configs.TrustedProxies()...)
}

// AddRoute adds a new route to the server, prefixed with
// the configured prefix.
func (s *Server) AddRoute(pattern string, handler http.Handler) {
	s.Mount(path.Join(urls.Prefix(), pattern), handler)
}

// infoRoutes returns the route returning the service information.
func infoRoutes() http.Handler {
	r := chi.NewRouter()

	type versionInfo struct {
		Canonical string `json:"canonical"`
		Release   string `json:"release"`
		Build     string `json:"build"`
	}

	type serviceInfo struct {
		Version   versionInfo `json:"version"`
		BuildDate time.Time   `json:"build_date"`
		Formats   []string    `json:"formats"`
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		canonical := configs.Version()
		release, build, _ := strings.Cut(canonical, "-")

		res := serviceInfo{
			Version: versionInfo{
				Canonical: canonical,
				Release:   release,
				Build:     build,
			},
			BuildDate: configs.BuildTime(),
			Formats:   formatNames(),
		}

		Render(w, r, 200, res)
	})

	return r
}

// GetReqID returns the request ID.
func GetReqID(r *http.Request) string {
	return request.GetReqID(r.Context())
}

// Log returns a log entry including the request ID.
func Log(r *http.Request) *slog.Logger {
	return slog.With(slog.String("@id", GetReqID(r)))
}
