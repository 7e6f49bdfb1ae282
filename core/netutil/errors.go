// Package netutil classifies outbound network failures for retry decisions
// and log fields.
package netutil

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/url"
)

// ShouldRetry reports whether a network error is worth retrying.
// It focuses on transient dial/timeout failures produced by net/http.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Kind returns a short label for err: timeout, dns, dial, tls, cancelled or unknown.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "dial"
	}

	var alertErr tls.AlertError
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &alertErr) || errors.As(err, &certErr) {
		return "tls"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && urlErr.Err != err {
		if kind := Kind(urlErr.Err); kind != "unknown" {
			return kind
		}
	}
	return "unknown"
}

// StatusKind labels an HTTP status code as http_4xx or http_5xx.
func StatusKind(code int) string {
	switch {
	case code >= 500:
		return "http_5xx"
	case code >= 400:
		return "http_4xx"
	case code >= 300:
		return "http_3xx"
	default:
		return ""
	}
}
