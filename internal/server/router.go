// Package server wires the lookup handlers into HTTP and gRPC servers.
package server

import (
	"log/slog"
	"net/http"

	"github.com/TomasB/geoip2-server/internal/handler/geoip"
	"github.com/TomasB/geoip2-server/internal/handler/health"
	"github.com/TomasB/geoip2-server/internal/lookup"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// Route paths.
const (
	CityPath    = "/geoip/v2.1/city/:" + geoip.ParamIP
	CountryPath = "/geoip/v2.1/country/:" + geoip.ParamIP
	StatusPath  = "/status"
	ReadyPath   = "/ready"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger *slog.Logger

	// Ready backs the readiness endpoint. Nil means always ready.
	Ready func() error

	// CORSOrigins enables CORS for the listed origins when not empty.
	CORSOrigins []string
}

// NewRouter creates the HTTP handler serving the lookup API.
func NewRouter(resolver *lookup.Resolver, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	// Route on the escaped path so an encoded slash stays inside {ip}.
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(RequestLogger(logger))
	router.Use(Recovery())

	healthHandler := health.NewHandler(opts.Ready)
	handleGet(router, StatusPath, healthHandler.Status)
	handleGet(router, ReadyPath, healthHandler.Ready)

	geoipHandler := geoip.NewHandler(resolver)
	handleGet(router, CityPath, geoipHandler.City)
	handleGet(router, CountryPath, geoipHandler.Country)

	if len(opts.CORSOrigins) == 0 {
		return router
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID},
		MaxAge:         300,
	})(router)
}

// handleGet registers h for GET and HEAD.
func handleGet(r gin.IRoutes, path string, h gin.HandlerFunc) {
	r.GET(path, h)
	r.HEAD(path, h)
}
