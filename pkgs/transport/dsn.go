// Package transport owns the underlying Velbus link: a TCP or TLS socket,
// or a local serial port, plus the paced send queue and reconnect loop that
// sit on top of it. Grounded on commandstation/z21.go's connect/write/retry
// shape, generalized from a single UDP dial to the DSN forms spec.md §6
// requires.
package transport

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind distinguishes the transport a DSN resolves to.
type Kind int

const (
	KindTCP Kind = iota
	KindTLS
	KindSerial
)

// DSN is a parsed connect string, per spec.md §6:
//
//	host:port             plain TCP
//	tcp://host:port        plain TCP
//	tls://host:port        TLS, certificate verification disabled
//	password@host:port     (any scheme) send password before any framed traffic
//	/dev/ttyUSB0           serial at 38400 8N1, hardware flow control on
type DSN struct {
	Kind     Kind
	Host     string
	Port     uint16
	Path     string // serial device path, KindSerial only
	Password string // sent raw, UTF-8, before any framed traffic
}

// ParseDSN resolves a connect string into its transport kind and parameters.
func ParseDSN(raw string) (DSN, error) {
	if raw == "" {
		return DSN{}, fmt.Errorf("transport: empty dsn")
	}
	if filepath.IsAbs(raw) {
		return DSN{Kind: KindSerial, Path: raw}, nil
	}

	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "tcp://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return DSN{}, fmt.Errorf("transport: parse dsn %q: %w", raw, err)
	}

	kind := KindTCP
	switch strings.ToLower(u.Scheme) {
	case "tcp", "":
		kind = KindTCP
	case "tls":
		kind = KindTLS
	default:
		return DSN{}, fmt.Errorf("transport: unknown scheme %q in dsn %q", u.Scheme, raw)
	}

	host := u.Hostname()
	if host == "" {
		return DSN{}, fmt.Errorf("transport: dsn %q has no host", raw)
	}
	port := uint16(6000)
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return DSN{}, fmt.Errorf("transport: invalid port in dsn %q: %w", raw, err)
		}
		port = uint16(n)
	}

	dsn := DSN{Kind: kind, Host: host, Port: port}
	if u.User != nil {
		dsn.Password = u.User.Username()
	}
	return dsn, nil
}

// Address renders host:port for net.Dial.
func (d DSN) Address() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}
