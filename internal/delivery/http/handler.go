package http

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/comparewise/backend/internal/domain"
	"github.com/comparewise/backend/internal/infrastructure/render"
	"github.com/comparewise/backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service *usecase.SessionService
}

// NewHandler creates a new HTTP handler
func NewHandler(service *usecase.SessionService) *Handler {
	return &Handler{service: service}
}

// CompareRequest represents the body of a compare request
type CompareRequest struct {
	URL1 string `json:"url1"`
	URL2 string `json:"url2"`
}

// MessageRequest represents the body of a chat message
type MessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "comparewise-backend",
		"version": "1.0.0",
	})
}

// StartSession handles POST /sessions
func (h *Handler) StartSession(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	view, err := h.service.StartSession(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetSession handles GET /sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	view, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// EndSession handles DELETE /sessions/:id
func (h *Handler) EndSession(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	if err := h.service.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Compare handles POST /sessions/:id/compare
func (h *Handler) Compare(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.service.SubmitURLs(c.Request.Context(), c.Param("id"), req.URL1, req.URL2)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Comparison handles GET /sessions/:id/comparison?format=json|table|xlsx
func (h *Handler) Comparison(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	result, err := h.service.Comparison(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, result)
	case "table":
		var buf bytes.Buffer
		render.Table(&buf, result.Rows)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := render.Workbook(&buf, result.ProductID1, result.ProductID2, result.Rows); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="comparison.xlsx"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of json, table, xlsx"})
	}
}

// Messages handles GET /sessions/:id/messages?format=json|terminal
func (h *Handler) Messages(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	view, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, gin.H{"messages": view.Messages})
	case "terminal":
		width, _ := strconv.Atoi(c.Query("width"))
		out, err := render.Transcript(view.Messages, width)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(out))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of json, terminal"})
	}
}

// Ask handles POST /sessions/:id/messages and streams the answer as server-sent
// events: one "fragment" event per piece of text, then a "done" event carrying
// the full answer. Errors raised before the first fragment are plain JSON responses.
func (h *Handler) Ask(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	ctx := c.Request.Context()
	streaming := false
	answer, err := h.service.Ask(ctx, c.Param("id"), req.Content, func(fragment string) error {
		if !streaming {
			streaming = true
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Status(http.StatusOK)
		}
		c.SSEvent("fragment", gin.H{"content": fragment})
		c.Writer.Flush()
		return ctx.Err()
	})

	if err != nil {
		if !streaming {
			respondError(c, err)
			return
		}
		log.Printf("[HTTP] Answer stream for session %s aborted: %v", c.Param("id"), err)
		c.SSEvent("error", gin.H{"error": err.Error()})
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", gin.H{"content": answer})
	c.Writer.Flush()
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.service == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Session service not configured"})
		return false
	}
	return true
}

// respondError maps domain errors to HTTP responses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProductURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, domain.ErrComparisonNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "Both products must be looked up first"})
	case errors.Is(err, domain.ErrChatNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "Submit two product URLs before asking questions"})
	case errors.Is(err, domain.ErrLookupUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Product lookup API temporarily unavailable"})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
	default:
		log.Printf("[HTTP] Internal error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
