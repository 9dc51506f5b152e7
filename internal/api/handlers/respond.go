// internal/api/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// respondError maps domain errors onto HTTP statuses. Anything unmapped is
// an internal error; the detail is logged, not leaked.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		transitionErr *domain.StateTransitionError
		negativeErr   *domain.NegativeStockError
		notFoundErr   *domain.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"kind":  "validation",
			"field": validationErr.Field,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": transitionErr.Error(),
			"kind":  "state_transition",
			"from":  string(transitionErr.From),
			"to":    string(transitionErr.To),
		})
	case errors.As(err, &negativeErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": negativeErr.Error(),
			"kind":  "negative_stock",
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"error": notFoundErr.Error(),
			"kind":  "not_found",
		})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func parseNonNegativeInt(value string) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v >= 0 {
		return v
	}
	return 0
}

func parseOptionalID(value string) *int64 {
	if v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil && v > 0 {
		return &v
	}
	return nil
}
