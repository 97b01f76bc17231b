package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// AuthorizerPingTimeout bounds a reachability check of the Authorizer
const AuthorizerPingTimeout = 1500 * time.Millisecond

// PingService checks that something accepts TCP connections at serviceURL.
// Only the host and port are used; the scheme supplies a default port.
func PingService(ctx context.Context, serviceURL string, timeout time.Duration) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Hostname() == "" {
		return fmt.Errorf("invalid URL %q: missing host", serviceURL)
	}

	port := parsedURL.Port()
	if port == "" {
		port = "80"
		if parsedURL.Scheme == "https" {
			port = "443"
		}
	}
	address := net.JoinHostPort(parsedURL.Hostname(), port)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingAuthorizer checks if the Authorizer service is reachable
func PingAuthorizer(ctx context.Context, authzURL string) error {
	return PingService(ctx, authzURL, AuthorizerPingTimeout)
}
