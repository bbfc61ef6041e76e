package http

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/oshokin/vidstash/internal/config"
	"github.com/oshokin/vidstash/internal/logger"
	"github.com/oshokin/vidstash/internal/utils"
)

// LogTransport is a custom http.RoundTripper that logs HTTP requests and responses at debug level.
// Bodies are dumped only for textual content types so video streams are never buffered.
type LogTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// maxLogLength is the maximum length of logged request/response data.
	maxLogLength int
}

// Static error definitions for better error handling.
var (
	// ErrNilRequest indicates that the HTTP request is nil.
	ErrNilRequest = errors.New("request is nil")
)

// NewLogTransport creates and returns a new instance of LogTransport.
// If maxLogLength is less than or equal to 0, it defaults to config.DefaultMaxLogLength.
func NewLogTransport(next http.RoundTripper, maxLogLength int) http.RoundTripper {
	if maxLogLength <= 0 {
		maxLogLength = config.DefaultMaxLogLength
	}

	return &LogTransport{
		next:         next,
		maxLogLength: maxLogLength,
	}
}

// RoundTrip executes a single HTTP transaction and logs the request and response.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if !logger.IsDebugLevel() {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()
	requestDump := t.dumpRequest(req)
	startTime := time.Now()

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(startTime)

	if err != nil {
		logger.DebugKV(ctx, "HTTP request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"duration", duration,
			"error", err)

		return nil, err
	}

	logger.DebugKV(ctx, "HTTP request completed",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"content_length", resp.ContentLength,
		"duration", duration,
		"request", requestDump,
		"response", t.dumpResponse(resp))

	return resp, nil
}

func (t *LogTransport) dumpRequest(req *http.Request) string {
	// GET and HEAD carry no body worth dumping; other methods only when the body is textual.
	withBody := req.Body != nil && req.Body != http.NoBody && utils.IsTextContentType(req.Header.Get("Content-Type"))

	dump, err := httputil.DumpRequestOut(req, withBody)
	if err != nil {
		return err.Error()
	}

	return t.truncate(dump)
}

func (t *LogTransport) dumpResponse(resp *http.Response) string {
	dump, err := httputil.DumpResponse(resp, utils.IsTextContentType(resp.Header.Get("Content-Type")))
	if err != nil {
		return err.Error()
	}

	return t.truncate(dump)
}

func (t *LogTransport) truncate(data []byte) string {
	if len(data) > t.maxLogLength {
		return string(data[:t.maxLogLength]) + "... [truncated]"
	}

	return string(data)
}
