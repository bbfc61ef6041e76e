package http

import "time"

const (
	// DefaultTimeout bounds short requests such as the catalog fetch and connectivity probes.
	DefaultTimeout = 60 * time.Second

	// DefaultDialTimeout bounds establishing a TCP connection.
	DefaultDialTimeout = 15 * time.Second

	// DefaultResponseHeaderTimeout bounds waiting for response headers.
	// Streaming bodies are not bounded here; stall detection happens at the transfer level.
	DefaultResponseHeaderTimeout = 30 * time.Second

	// DefaultIdleConnTimeout is how long idle keep-alive connections stay in the pool.
	DefaultIdleConnTimeout = 90 * time.Second
)
