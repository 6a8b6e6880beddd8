package httpserver

import "time"

const (
	defaultPort = "8080"

	readTimeout       = 5 * time.Second
	readHeaderTimeout = 3 * time.Second
	idleTimeout       = 60 * time.Second
	maxHeaderBytes    = 1 << 12 // 4kb

	// drains evict every pod of a node synchronously
	writeTimeout = 2 * time.Minute

	maxBodyBytes = 1 << 16

	apiPrefix = "/api/v1"

	defaultIncidentLimit = 100
)
