package http

// registerV1Routes sets up the v1 API structure
// Groups: /api/v1/datasets, /api/v1/filters, /api/v1/results
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header

	v1.POST("/session", s.handleV1CreateSession)

	// Dataset endpoints - CSV uploads
	datasets := v1.Group("/datasets")
	{
		datasets.POST("/stations", s.handleV1UploadStations)
		datasets.POST("/measurements", s.handleV1UploadMeasurements)
	}

	// Filter endpoints - characteristic list and per-characteristic bounds
	filters := v1.Group("/filters")
	{
		filters.GET("/characteristics", s.handleV1Characteristics)
		filters.GET("/bounds", s.handleV1Bounds)
	}

	// Result endpoints - filtered rows, resolved station map, trend chart
	results := v1.Group("/results")
	{
		results.GET("", s.handleV1Results)
		results.GET("/stations", s.handleV1ResultStations)
		results.GET("/trend.png", s.handleV1Trend)
	}
}
