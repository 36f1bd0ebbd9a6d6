package geoip

import (
	"errors"
	"net/http"

	"github.com/TomasB/geoip2-server/internal/apierror"
	"github.com/TomasB/geoip2-server/internal/lookup"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// ParamIP is the route parameter holding the address.
const ParamIP = "ip"

const contentTypeJSON = "application/json; charset=utf-8"

// Handler manages the city and country lookup endpoints.
type Handler struct {
	resolver *lookup.Resolver
}

// NewHandler creates a new lookup handler with the given Resolver.
func NewHandler(resolver *lookup.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// City handles GET /geoip/v2.1/city/:ip
func (h *Handler) City(c *gin.Context) {
	record, err := h.resolver.City(c.Param(ParamIP))
	respond(c, record, err)
}

// Country handles GET /geoip/v2.1/country/:ip
func (h *Handler) Country(c *gin.Context) {
	record, err := h.resolver.Country(c.Param(ParamIP))
	respond(c, record, err)
}

func respond(c *gin.Context, record any, err error) {
	if err != nil {
		Abort(c, err)
		return
	}

	// Encode before writing so a failure still yields a taxonomy response.
	body, err := json.Marshal(record)
	if err != nil {
		Abort(c, apierror.New(apierror.IPAddressNotFound, err))
		return
	}

	c.Data(http.StatusOK, contentTypeJSON, body)
}

// Abort writes the taxonomy response for err and stops the handler chain.
// Internal causes are attached to the context for the request logger.
func Abort(c *gin.Context, err error) {
	var (
		apiErr *apierror.Error
		kind   apierror.Kind
	)
	switch {
	case errors.As(err, &apiErr):
		if cause := apiErr.Unwrap(); cause != nil {
			_ = c.Error(cause)
		}
	case errors.As(err, &kind):
	default:
		_ = c.Error(err)
	}

	kind = apierror.KindOf(err)
	c.AbortWithStatusJSON(kind.Status(), kind.Body())
}
