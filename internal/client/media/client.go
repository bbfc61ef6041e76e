package media

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/oshokin/vidstash/internal/logger"
	http_transport "github.com/oshokin/vidstash/internal/transport/http"
	"github.com/oshokin/vidstash/internal/utils"
)

// Client defines the interface for talking to the remote catalog and media hosts.
type Client interface {
	// FetchCatalog downloads and decodes the video catalog.
	FetchCatalog(ctx context.Context) ([]*Video, error)
	// FetchVideo opens a streaming body for the video at videoURL.
	FetchVideo(ctx context.Context, videoURL string) (*FetchVideoResult, error)
	// Probe issues a HEAD request to probeURL and reports whether any response came back.
	Probe(ctx context.Context, probeURL string) error
}

// ClientImpl implements the Client interface.
type ClientImpl struct {
	// catalogURL is the fixed catalog endpoint.
	catalogURL string
	// apiClient serves short exchanges and is bounded by an overall timeout.
	apiClient *http.Client
	// streamingClient serves media bodies and is bounded only by the request context.
	streamingClient *http.Client
}

// NewClient creates a client for catalogURL that identifies itself with userAgentProvider.
func NewClient(catalogURL string, userAgentProvider utils.UserAgentProvider) Client {
	transport := http_transport.NewTransport(userAgentProvider)

	return &ClientImpl{
		catalogURL:      catalogURL,
		apiClient:       http_transport.NewAPIClient(transport),
		streamingClient: http_transport.NewStreamingClient(transport),
	}
}

// FetchCatalog downloads and decodes the video catalog.
// Entries without an id are dropped because nothing can be keyed on them.
func (c *ClientImpl) FetchCatalog(ctx context.Context) ([]*Video, error) {
	if strings.TrimSpace(c.catalogURL) == "" {
		return nil, ErrEmptyURL
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.catalogURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	request.Header.Set("Accept", "application/json")

	response, err := c.apiClient.Do(request)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	var videos []*Video
	if err = json.NewDecoder(response.Body).Decode(&videos); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	result := make([]*Video, 0, len(videos))

	for _, video := range videos {
		if video == nil || strings.TrimSpace(video.ID) == "" {
			logger.Warn(ctx, "Skipping catalog entry without an id")

			continue
		}

		result = append(result, video)
	}

	logger.Debugf(ctx, "Fetched %d catalog entries from %s", len(result), c.catalogURL)

	return result, nil
}

// FetchVideo opens a streaming body for the video at videoURL.
func (c *ClientImpl) FetchVideo(ctx context.Context, videoURL string) (*FetchVideoResult, error) {
	if strings.TrimSpace(videoURL) == "" {
		return nil, ErrEmptyURL
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	// Ask for the whole entity so servers that prefer ranges still answer with a length.
	request.Header.Add("Range", "bytes=0-")

	response, err := c.streamingClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusPartialContent {
		response.Body.Close() //nolint:errcheck,gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return &FetchVideoResult{
		Body:       response.Body,
		TotalBytes: response.ContentLength,
	}, nil
}

// Probe issues a HEAD request to probeURL.
// Any HTTP response, whatever its status, proves the network is reachable.
func (c *ClientImpl) Probe(ctx context.Context, probeURL string) error {
	if strings.TrimSpace(probeURL) == "" {
		return ErrEmptyURL
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL, http.NoBody)
	if err != nil {
		return err
	}

	response, err := c.apiClient.Do(request)
	if err != nil {
		return err
	}

	_, _ = io.Copy(io.Discard, response.Body)

	return response.Body.Close()
}
