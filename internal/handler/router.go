package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Routes *RouteHandler
	WS     *WSHandler
	Health *HealthHandler
	Stats  *StatsHandler
	Admin  *AdminHandler
}

// NewRouter mounts every endpoint. The websocket route is kept out of the gzip
// group since the upgrade needs the raw connection. rateLimit may be nil.
func NewRouter(h Handlers, origins []string, rateLimit func(http.Handler) http.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(CORSMiddleware(origins))

	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)

	r.Route("/api", func(r chi.Router) {
		if rateLimit != nil {
			r.Use(rateLimit)
		}

		if h.WS != nil {
			r.Get("/ws", h.WS.ServeWS)
		}

		r.Group(func(r chi.Router) {
			r.Use(GzipMiddleware)

			r.Get("/all-stations", h.Routes.ListStations)
			r.Get("/find-path", h.Routes.FindPath)
			r.Get("/lines-and-stations", h.Routes.LinesAndStations)
			r.Get("/lines", h.Routes.ListLines)
			r.Get("/stats", h.Stats.GetStats)
			if h.Admin != nil {
				r.Post("/reload", h.Admin.Reload)
			}
		})
	})

	return r
}

// OriginHosts turns CORS origins into the host patterns the websocket
// handshake checks against.
func OriginHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			hosts = append(hosts, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
