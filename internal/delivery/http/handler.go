package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/saintathena/backend/internal/domain"
	"github.com/saintathena/backend/internal/logger"
)

// Version is reported by the health and status endpoints
const Version = "1.0.0"

const anonymousClient = "anonymous"

// SearchUsecase is what the handler needs from the search service
type SearchUsecase interface {
	Search(ctx context.Context, request *domain.SearchRequest) (*domain.SearchResponse, error)
	Suggest(ctx context.Context, input string) (*domain.SuggestResponse, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search SearchUsecase
	log    *log.Logger
}

// NewHandler creates a new HTTP handler. A nil service makes search endpoints answer 501.
func NewHandler(search SearchUsecase) *Handler {
	return &Handler{
		search: search,
		log:    logger.New("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "saintathena-backend",
		"version": Version,
	})
}

// SearchStatus describes the search API
func (h *Handler) SearchStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "SaintAthena Search API",
		"version":  Version,
		"features": []string{"fuzzy-matching", "alternate-names", "shopping-lists", "suggestions"},
	})
}

// Search handles single-product and shopping-list searches
func (h *Handler) Search(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Search service not configured"})
		return
	}

	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required and must be a string"})
		return
	}
	req.ClientID = clientIdentifier(c)
	req.UserID = strings.TrimSpace(c.GetHeader("X-User-ID"))

	resp, err := h.search.Search(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Suggest returns category and term completions for ?q=
func (h *Handler) Suggest(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Search service not configured"})
		return
	}

	resp, err := h.search.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondError maps service errors to status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	var limited *domain.RateLimitError

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.TrimPrefix(err.Error(), domain.ErrInvalidRequest.Error()+": ")})
	case errors.As(err, &limited):
		setRateLimitHeaders(c, limited.Decision)
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again in a minute."})
	case errors.Is(err, domain.ErrCatalogUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
	default:
		h.log.Error("search failed", "requestID", c.GetString(requestIDKey), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while searching. Please try again."})
	}
}

func setRateLimitHeaders(c *gin.Context, d domain.RateDecision) {
	retryAfter := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
}

// clientIdentifier picks the rate-limit key: first forwarded address, then the peer address
func clientIdentifier(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return anonymousClient
}
