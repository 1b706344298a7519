package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// dialTCP opens a plain or TLS-wrapped TCP connection per dsn.Kind. TLS
// certificate verification is disabled, matching spec.md §6 ("tls://
// host:port — TLS, certificate verification disabled") -- Velbus gateways
// are reached over a LAN/VPN and ship self-signed certificates.
func dialTCP(dsn DSN, timeout time.Duration) (net.Conn, error) {
	addr := dsn.Address()
	switch dsn.Kind {
	case KindTLS:
		dialer := &net.Dialer{Timeout: timeout}
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{InsecureSkipVerify: true}) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("transport: tls dial %s: %w", addr, err)
		}
		return conn, nil
	default:
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return nil, fmt.Errorf("transport: tcp dial %s: %w", addr, err)
		}
		return conn, nil
	}
}
