// Package proxy builds request URLs for the rendering proxy that fetches and
// JavaScript-renders target pages on the crawler's behalf.
package proxy

import (
	"net/url"
	"strings"
)

// DefaultEndpoint is the rendering proxy API.
const DefaultEndpoint = "https://api.zenrows.com/v1/"

// BuildURL returns the proxy request URL for target. The key is embedded as-is;
// neither input is validated.
func BuildURL(endpoint, target, apiKey string) string {
	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteString("?apikey=")
	b.WriteString(apiKey)
	b.WriteString("&url=")
	b.WriteString(url.QueryEscape(target))
	b.WriteString("&js_render=true&premium_proxy=true")
	return b.String()
}

// Builder wraps targets with a fixed endpoint and API key.
type Builder struct {
	Endpoint string
	APIKey   string
}

// New returns a Builder, falling back to DefaultEndpoint.
func New(endpoint, apiKey string) Builder {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return Builder{Endpoint: endpoint, APIKey: apiKey}
}

// Wrap implements crawler.URLWrapper.
func (b Builder) Wrap(target string) string {
	return BuildURL(b.Endpoint, target, b.APIKey)
}

// Direct requests targets without a proxy.
type Direct struct{}

// Wrap returns target unchanged.
func (Direct) Wrap(target string) string {
	return target
}
