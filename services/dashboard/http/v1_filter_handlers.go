package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/dataset"
	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/session"
)

// readySession resolves the request session and verifies both datasets are
// uploaded; otherwise it writes the error response.
func (s *Server) readySession(c *gin.Context) (*session.Session, bool) {
	sess, ok := s.sessionFromRequest(c)
	if !ok {
		return nil, false
	}
	if !sess.Ready() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "upload both the station and narrow result datasets to continue",
		})
		return nil, false
	}
	return sess, true
}

// handleV1Characteristics returns the distinct characteristic names in
// first-seen order
// GET /api/v1/filters/characteristics
func (s *Server) handleV1Characteristics(c *gin.Context) {
	sess, ok := s.readySession(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	names, err := sess.Store().DistinctCharacteristics(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": names,
		"meta": gin.H{
			"count": len(names),
		},
	})
}

// handleV1Bounds returns the value/date extremes for one characteristic,
// used to seed the range widgets
// GET /api/v1/filters/bounds?characteristic=Lead
func (s *Server) handleV1Bounds(c *gin.Context) {
	sess, ok := s.readySession(c)
	if !ok {
		return
	}

	characteristic := c.Query("characteristic")
	if characteristic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "characteristic is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	bounds, err := sess.Store().Bounds(ctx, characteristic)
	if err != nil {
		if errors.Is(err, dataset.ErrEmptySelection) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"value_min": bounds.ValueMin,
			"value_max": bounds.ValueMax,
			"date_min":  bounds.DateMin.Format(dataset.DayFormat),
			"date_max":  bounds.DateMax.Format(dataset.DayFormat),
		},
	})
}
