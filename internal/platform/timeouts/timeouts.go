// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between the runtime surfaces and
// makes the durations discoverable.
package timeouts

import "time"

// CartRequest caps the time allowed for a single HTTP call to the host
// cart endpoints.
const CartRequest = 5 * time.Second

// ReadHeader limits how long the HTTP gateway waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP gateway waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
