package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/models"
	"fx-dashboard/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// parseLimit mirrors the history endpoint contract: absent or invalid means
// the default.
func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

// -----------------------------------------------------------------------------

// parseRange reads optional start/end values. Empty strings count as absent.
func parseRange(start, end *string) (models.MDateRange, error) {
	var r models.MDateRange

	parse := func(raw *string, field string) (*time.Time, error) {
		if raw == nil || strings.TrimSpace(*raw) == "" {
			return nil, nil
		}
		t, err := utils.ParseTimestamp(strings.TrimSpace(*raw))
		if err != nil {
			return nil, helpers.NewInvalidRange(field + ": " + err.Error())
		}
		return &t, nil
	}

	var err error
	if r.Start, err = parse(start, "start"); err != nil {
		return r, err
	}
	if r.End, err = parse(end, "end"); err != nil {
		return r, err
	}
	return r, nil
}

// -----------------------------------------------------------------------------

func queryPtr(c *gin.Context, key string) *string {
	if v, ok := c.GetQuery(key); ok && v != "" {
		return &v
	}
	return nil
}

// -----------------------------------------------------------------------------

func abortWithError(c *gin.Context, status int, code string, err error) {
	message := err.Error()
	var pe *helpers.ProviderError
	if errors.As(err, &pe) {
		message = pe.Message
	}
	c.AbortWithStatusJSON(status, models.MErrorResponse{Error: code, Message: message})
}
