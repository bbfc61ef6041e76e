package utils

//go:generate $MOCKGEN -source=user_agent_provider.go -destination=mocks/user_agent_provider_mock.go

import (
	"fmt"
	"runtime"
)

// UserAgentProvider is an interface that defines a method for retrieving a User-Agent string.
type UserAgentProvider interface {
	// GetUserAgent returns a User-Agent string.
	GetUserAgent() string
}

// SimpleUserAgentProvider returns a fixed User-Agent string set during initialization.
type SimpleUserAgentProvider struct {
	// userAgent is the User-Agent string to return.
	userAgent string
}

// NewSimpleUserAgentProvider creates a provider that always returns userAgent.
func NewSimpleUserAgentProvider(userAgent string) UserAgentProvider {
	return &SimpleUserAgentProvider{userAgent: userAgent}
}

// NewProductUserAgentProvider creates a provider that identifies the application,
// e.g. "vidstash/0.3.0 (linux; amd64)".
func NewProductUserAgentProvider(product, version string) UserAgentProvider {
	return &SimpleUserAgentProvider{
		userAgent: fmt.Sprintf("%s/%s (%s; %s)", product, version, runtime.GOOS, runtime.GOARCH),
	}
}

// GetUserAgent returns a User-Agent string.
func (p *SimpleUserAgentProvider) GetUserAgent() string {
	return p.userAgent
}
