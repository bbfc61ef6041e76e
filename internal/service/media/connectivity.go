package media

import (
	"context"
	"time"

	"github.com/oshokin/vidstash/internal/client/media"
	"github.com/oshokin/vidstash/internal/config"
	"github.com/oshokin/vidstash/internal/logger"
)

// ConnectivityChecker reports whether the network is reachable.
type ConnectivityChecker interface {
	IsConnected(ctx context.Context) bool
}

// StaticConnectivity is a fixed answer, used for the online and offline modes.
type StaticConnectivity bool

// IsConnected returns the fixed answer.
func (s StaticConnectivity) IsConnected(context.Context) bool {
	return bool(s)
}

// ConnectivityFunc adapts a function to ConnectivityChecker.
type ConnectivityFunc func(ctx context.Context) bool

// IsConnected calls f.
func (f ConnectivityFunc) IsConnected(ctx context.Context) bool {
	return f(ctx)
}

// ProbeConnectivity asks the network: any HTTP answer from the probe URL within the timeout means connected.
type ProbeConnectivity struct {
	client   media.Client
	probeURL string
	timeout  time.Duration
}

// NewProbeConnectivity creates a probing checker.
func NewProbeConnectivity(client media.Client, probeURL string, timeout time.Duration) *ProbeConnectivity {
	return &ProbeConnectivity{
		client:   client,
		probeURL: probeURL,
		timeout:  timeout,
	}
}

// IsConnected probes the network.
func (p *ProbeConnectivity) IsConnected(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.client.Probe(probeCtx, p.probeURL); err != nil {
		logger.Debugf(ctx, "Connectivity probe to '%s' failed: %v", p.probeURL, err)

		return false
	}

	return true
}

// NewConnectivityChecker returns the checker selected by cfg.ConnectivityMode.
// The offline flag forces offline regardless of the configured mode.
func NewConnectivityChecker(cfg *config.Config, client media.Client, forceOffline bool) ConnectivityChecker {
	if forceOffline {
		return StaticConnectivity(false)
	}

	switch cfg.ConnectivityMode {
	case config.ConnectivityModeOnline:
		return StaticConnectivity(true)
	case config.ConnectivityModeOffline:
		return StaticConnectivity(false)
	default:
		return NewProbeConnectivity(client, cfg.ConnectivityProbeURL, cfg.ParsedConnectivityProbeTimeout)
	}
}
