// Package api exposes the source registry over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/headlines/internal/cache"
	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
	"github.com/jonesrussell/north-cloud/headlines/internal/models"
	"github.com/jonesrussell/north-cloud/headlines/internal/registry"
)

// LinkSource is what the handlers need from the registry.
type LinkSource interface {
	Sources() []string
	Get(ctx context.Context, name string) ([]models.Link, error)
	GetAll(ctx context.Context) *registry.AllResult
	Clear(name string) error
	ClearAll()
	Status() []registry.SourceStatus
}

// Handler serves the link and cache admin endpoints.
type Handler struct {
	links  LinkSource
	logger logger.Logger
}

// NewHandler creates a Handler. A nil logger is replaced with a no-op.
func NewHandler(links LinkSource, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{links: links, logger: log}
}

// SourceErrorResponse is one failed source in a /news response.
type SourceErrorResponse struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// ListSources handles GET /sources.
func (h *Handler) ListSources(c *gin.Context) {
	sources := h.links.Sources()
	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"count":   len(sources),
	})
}

// GetAllNews handles GET /news. Sources that fail are reported in "errors"
// while the rest still contribute links.
func (h *Handler) GetAllNews(c *gin.Context) {
	result := h.links.GetAll(c.Request.Context())

	errs := make([]SourceErrorResponse, 0, len(result.Errors))
	for _, se := range result.Errors {
		h.logger.Warn("Source unavailable for aggregate request",
			logger.String("source", se.Source),
			logger.Error(se.Err),
		)
		errs = append(errs, SourceErrorResponse{Source: se.Source, Error: se.Err.Error()})
	}

	c.JSON(http.StatusOK, gin.H{
		"links":  result.Links,
		"count":  len(result.Links),
		"errors": errs,
	})
}

// GetSourceNews handles GET /news/:source.
func (h *Handler) GetSourceNews(c *gin.Context) {
	name := c.Param("source")

	links, err := h.links.Get(c.Request.Context(), name)
	if err != nil {
		h.respondLinkError(c, name, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source": name,
		"links":  links,
		"count":  len(links),
	})
}

func (h *Handler) respondLinkError(c *gin.Context, name string, err error) {
	log := logger.FromContext(c.Request.Context())

	switch {
	case errors.Is(err, registry.ErrSourceNotFound):
		log.Debug("Unknown source requested", logger.String("source", name))
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found", "source": name})
	case errors.Is(err, cache.ErrUnavailable), c.Request.Context().Err() != nil:
		log.Warn("Source links unavailable", logger.String("source", name), logger.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Links not available yet", "source": name})
	default:
		log.Error("Failed to refresh source", logger.String("source", name), logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch source",
			"source":  name,
			"details": err.Error(),
		})
	}
}

// CacheStatus handles GET /admin/cache.
func (h *Handler) CacheStatus(c *gin.Context) {
	status := h.links.Status()
	c.JSON(http.StatusOK, gin.H{
		"sources": status,
		"count":   len(status),
	})
}

// ClearSource handles POST /admin/cache/:source/clear.
func (h *Handler) ClearSource(c *gin.Context) {
	name := c.Param("source")
	if err := h.links.Clear(name); err != nil {
		if errors.Is(err, registry.ErrSourceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Source not found", "source": name})
			return
		}
		h.logger.Error("Failed to clear source cache", logger.String("source", name), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": []string{name}})
}

// ClearAll handles POST /admin/cache/clear.
func (h *Handler) ClearAll(c *gin.Context) {
	h.links.ClearAll()
	c.JSON(http.StatusOK, gin.H{"cleared": h.links.Sources()})
}
