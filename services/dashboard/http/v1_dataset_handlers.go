package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleV1CreateSession opens a fresh session with empty tables
// POST /api/v1/session
func (s *Server) handleV1CreateSession(c *gin.Context) {
	sess, err := s.sessions.Create()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{"session_id": sess.ID},
	})
}

// handleV1UploadStations loads the station table for a session
// POST /api/v1/datasets/stations (multipart field "file")
func (s *Server) handleV1UploadStations(c *gin.Context) {
	sess, ok := s.sessionFromRequest(c)
	if !ok {
		return
	}

	raw, ok := s.readUpload(c)
	if !ok {
		return
	}

	key, stations, err := s.cache.Stations(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := sess.Store().ReplaceStations(ctx, stations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if replaced := sess.SetStationsLoaded(key); replaced != "" {
		s.cache.Evict(replaced)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"stations": len(stations)},
		"meta": gin.H{"content_key": key},
	})
}

// handleV1UploadMeasurements loads the narrow result table for a session
// POST /api/v1/datasets/measurements (multipart field "file")
func (s *Server) handleV1UploadMeasurements(c *gin.Context) {
	sess, ok := s.sessionFromRequest(c)
	if !ok {
		return
	}

	raw, ok := s.readUpload(c)
	if !ok {
		return
	}

	key, measurements, err := s.cache.Measurements(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := sess.Store().ReplaceMeasurements(ctx, measurements); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if replaced := sess.SetMeasurementsLoaded(key); replaced != "" {
		s.cache.Evict(replaced)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"measurements": len(measurements)},
		"meta": gin.H{"content_key": key},
	})
}

// readUpload pulls the multipart "file" field subject to the configured
// size cap. On failure it writes the error response and returns ok=false.
func (s *Server) readUpload(c *gin.Context) ([]byte, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return nil, false
	}

	maxBytes := s.cfg.MaxUploadBytes()
	if file.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("upload exceeds %d MB limit", s.cfg.MaxUploadMB),
		})
		return nil, false
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if int64(len(raw)) > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("upload exceeds %d MB limit", s.cfg.MaxUploadMB),
		})
		return nil, false
	}
	return raw, true
}
