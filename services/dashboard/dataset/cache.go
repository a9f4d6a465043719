package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache memoizes parsed uploads content-addressed by the raw bytes, so an
// unchanged re-upload is not parsed again. Only parsing is cached; filtering
// downstream always recomputes.
type Cache struct {
	mu           sync.Mutex
	stations     map[string][]StationRecord
	measurements map[string][]MeasurementRecord
}

// NewCache returns an empty parse cache.
func NewCache() *Cache {
	return &Cache{
		stations:     make(map[string][]StationRecord),
		measurements: make(map[string][]MeasurementRecord),
	}
}

// Key is the content address of an upload: hex SHA-256 of the raw bytes.
func Key(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Stations parses a station upload, reusing the cached result when the same
// bytes were loaded before. The returned key identifies the upload.
func (c *Cache) Stations(raw []byte) (string, []StationRecord, error) {
	key := Key(raw)

	c.mu.Lock()
	cached, ok := c.stations[key]
	c.mu.Unlock()
	if ok {
		return key, cached, nil
	}

	stations, err := LoadStations(raw)
	if err != nil {
		return key, nil, err
	}

	c.mu.Lock()
	c.stations[key] = stations
	c.mu.Unlock()
	return key, stations, nil
}

// Measurements is the narrow result counterpart of Stations.
func (c *Cache) Measurements(raw []byte) (string, []MeasurementRecord, error) {
	key := Key(raw)

	c.mu.Lock()
	cached, ok := c.measurements[key]
	c.mu.Unlock()
	if ok {
		return key, cached, nil
	}

	measurements, err := LoadMeasurements(raw)
	if err != nil {
		return key, nil, err
	}

	c.mu.Lock()
	c.measurements[key] = measurements
	c.mu.Unlock()
	return key, measurements, nil
}

// Evict drops a cached upload, used when a session replaces its dataset.
func (c *Cache) Evict(key string) {
	c.mu.Lock()
	delete(c.stations, key)
	delete(c.measurements, key)
	c.mu.Unlock()
}

// Contains reports whether an upload with this content key is cached.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, st := c.stations[key]
	_, ms := c.measurements[key]
	return st || ms
}
