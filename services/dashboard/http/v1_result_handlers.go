package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/dataset"
	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/filter"
	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/render"
	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/session"
)

// measurementJSON is the wire shape of a filtered row, with the activity
// date at day granularity.
type measurementJSON struct {
	StationID      string  `json:"station_id"`
	Characteristic string  `json:"characteristic"`
	Date           string  `json:"date"`
	Value          float64 `json:"value"`
}

func toMeasurementJSON(rows []dataset.MeasurementRecord) []measurementJSON {
	out := make([]measurementJSON, 0, len(rows))
	for _, m := range rows {
		out = append(out, measurementJSON{
			StationID:      m.StationID,
			Characteristic: m.Characteristic,
			Date:           m.Day(),
			Value:          m.Value,
		})
	}
	return out
}

// criteriaFromRequest parses the filter query parameters and fills unset
// ranges from the characteristic bounds. A date range with only one
// endpoint supplied falls back to the full observed span. On failure the
// error response is already written.
func (s *Server) criteriaFromRequest(c *gin.Context, sess *session.Session) (filter.Criteria, bool) {
	characteristic := c.Query("characteristic")
	if characteristic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "characteristic is required"})
		return filter.Criteria{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	bounds, err := sess.Store().Bounds(ctx, characteristic)
	if err != nil {
		if errors.Is(err, dataset.ErrEmptySelection) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return filter.Criteria{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return filter.Criteria{}, false
	}

	criteria := filter.Criteria{Characteristic: characteristic}

	minStr, maxStr := c.Query("value_min"), c.Query("value_max")
	if (minStr == "") != (maxStr == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value_min and value_max must be provided together"})
		return filter.Criteria{}, false
	}
	haveValues := minStr != ""
	if haveValues {
		if criteria.ValueMin, err = strconv.ParseFloat(minStr, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid value_min"})
			return filter.Criteria{}, false
		}
		if criteria.ValueMax, err = strconv.ParseFloat(maxStr, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid value_max"})
			return filter.Criteria{}, false
		}
	}

	if startStr := c.Query("start"); startStr != "" {
		if criteria.Start, err = time.Parse(dataset.DayFormat, startStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, want YYYY-MM-DD"})
			return filter.Criteria{}, false
		}
	}
	if endStr := c.Query("end"); endStr != "" {
		if criteria.End, err = time.Parse(dataset.DayFormat, endStr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, want YYYY-MM-DD"})
			return filter.Criteria{}, false
		}
	}

	return criteria.WithDefaults(bounds, haveValues), true
}

// handleV1Results returns the filtered measurement rows and their count
// GET /api/v1/results?characteristic=&value_min=&value_max=&start=&end=
func (s *Server) handleV1Results(c *gin.Context) {
	sess, ok := s.readySession(c)
	if !ok {
		return
	}
	criteria, ok := s.criteriaFromRequest(c, sess)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	rows, err := sess.Store().FilterMeasurements(ctx, criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"measurements": toMeasurementJSON(rows),
		},
		"meta": gin.H{
			"count":          len(rows),
			"characteristic": criteria.Characteristic,
		},
	})
}

// handleV1ResultStations returns the resolved station set as a map view
// GET /api/v1/results/stations?characteristic=&value_min=&value_max=&start=&end=
func (s *Server) handleV1ResultStations(c *gin.Context) {
	sess, ok := s.readySession(c)
	if !ok {
		return
	}
	criteria, ok := s.criteriaFromRequest(c, sess)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	stations, err := sess.Store().ResolveStations(ctx, criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(stations) == 0 {
		// Informational, not an error: the trend chart can still render.
		c.JSON(http.StatusOK, gin.H{
			"data": render.MapView{Markers: []render.Marker{}},
			"meta": gin.H{
				"count":   0,
				"message": "No stations found with the selected criteria for this characteristic.",
			},
		})
		return
	}

	view, err := render.NewMapView(stations)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": view,
		"meta": gin.H{"count": len(view.Markers)},
	})
}

// handleV1Trend renders the per-station trend chart as PNG
// GET /api/v1/results/trend.png?characteristic=&value_min=&value_max=&start=&end=
func (s *Server) handleV1Trend(c *gin.Context) {
	sess, ok := s.readySession(c)
	if !ok {
		return
	}
	criteria, ok := s.criteriaFromRequest(c, sess)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	rows, err := sess.Store().FilterMeasurements(ctx, criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no measurements match the current filters"})
		return
	}

	png, err := render.Trend(rows, criteria.Characteristic, s.cfg.ChartWidth, s.cfg.ChartHeight)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
