// Package transport implements apci.Transport over a real TCP socket, with
// an optional TLS handshake, for use outside of tests.
package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"
)

// Stats mirrors the byte/connection counters a monitoring endpoint wants to
// expose, the same fields avaneesh92-dnp3-go's TCPChannel tracks with
// atomics rather than a mutex-guarded struct.
type Stats struct {
	BytesSent     uint64
	BytesReceived uint64
	Connects      uint64
	Disconnects   uint64
	ReadErrors    uint64
}

// TCP is a single-connection, non-blocking-poll apci.Transport. It is not
// safe for concurrent use — like everything else in the core, it is only
// ever driven from one caller at a time (§5).
type TCP struct {
	DialTimeout time.Duration
	TLSConfig   *tls.Config // nil disables TLS

	conn net.Conn
	buf  []byte

	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
	connects      atomic.Uint64
	disconnects   atomic.Uint64
	readErrors    atomic.Uint64
}

// New returns a plain TCP transport with the given dial timeout.
func New(dialTimeout time.Duration) *TCP {
	return &TCP{DialTimeout: dialTimeout}
}

// NewTLS returns a TCP transport that performs a TLS handshake immediately
// after connecting, built from the standard configuration surface: an
// optional CA bundle, an optional client certificate/key pair, and a
// verify mode ("off" skips chain and hostname verification entirely,
// "query" verifies the chain but not the hostname, "strict" does both).
func NewTLS(dialTimeout time.Duration, caFile, certFile, keyFile, verifyMode string) (*TCP, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS10}

	switch verifyMode {
	case "off":
		cfg.InsecureSkipVerify = true
	case "query", "strict":
		if caFile != "" {
			pem, err := os.ReadFile(caFile)
			if err != nil {
				return nil, fmt.Errorf("transport: read CA bundle: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("transport: no certificates found in %s", caFile)
			}
			cfg.RootCAs = pool
		}
		if verifyMode == "query" {
			cfg.InsecureSkipVerify = true
			cfg.VerifyPeerCertificate = verifyChainOnly(cfg)
		}
	default:
		return nil, fmt.Errorf("transport: unknown TLS verify mode %q", verifyMode)
	}

	if certFile != "" && keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("transport: load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return &TCP{DialTimeout: dialTimeout, TLSConfig: cfg}, nil
}

// verifyChainOnly builds a VerifyPeerCertificate callback that checks the
// certificate chain against cfg.RootCAs without checking the hostname,
// implementing the "query" verify mode (chain trusted, identity not
// pinned to the dialed address).
func verifyChainOnly(cfg *tls.Config) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return fmt.Errorf("transport: no peer certificate presented")
		}
		leaf, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("transport: parse peer certificate: %w", err)
		}
		opts := x509.VerifyOptions{Roots: cfg.RootCAs}
		_, err = leaf.Verify(opts)
		return err
	}
}

// Connect dials ip:port, wrapping the connection in TLS first if configured.
func (t *TCP) Connect(ip string, port int) error {
	addr := fmt.Sprintf("%s:%d", ip, port)
	conn, err := net.DialTimeout("tcp", addr, t.DialTimeout)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	if t.TLSConfig != nil {
		tconn := tls.Client(conn, t.TLSConfig)
		if err := tconn.Handshake(); err != nil {
			conn.Close()
			return fmt.Errorf("transport: TLS handshake: %w", err)
		}
		conn = tconn
	}
	t.conn = conn
	t.buf = t.buf[:0]
	t.connects.Add(1)
	return nil
}

// Abort closes the connection immediately, unblocking any WaitFor.
func (t *TCP) Abort() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.disconnects.Add(1)
	return err
}

// drain performs one non-blocking sweep of whatever the OS socket buffer
// currently holds, appending it to t.buf. A read timeout is not an error —
// it just means nothing was waiting.
func (t *TCP) drain() error {
	if t.conn == nil {
		return fmt.Errorf("transport: not connected")
	}
	var scratch [4096]byte
	for {
		t.conn.SetReadDeadline(time.Now())
		n, err := t.conn.Read(scratch[:])
		if n > 0 {
			t.buf = append(t.buf, scratch[:n]...)
			t.bytesReceived.Add(uint64(n))
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			t.readErrors.Add(1)
			return fmt.Errorf("transport: read: %w", err)
		}
		if n < len(scratch) {
			return nil
		}
	}
}

// Available reports how many bytes are buffered locally after a
// non-blocking drain of the socket.
func (t *TCP) Available() (int, error) {
	if err := t.drain(); err != nil && len(t.buf) == 0 {
		return 0, err
	}
	return len(t.buf), nil
}

// Read copies buffered bytes into dst without blocking, per apci.Transport:
// zero bytes with a nil error means nothing is available yet, never io.EOF.
func (t *TCP) Read(dst []byte) (int, error) {
	if err := t.drain(); err != nil && len(t.buf) == 0 {
		return 0, err
	}
	n := copy(dst, t.buf)
	t.buf = t.buf[n:]
	return n, nil
}

// WaitFor blocks until at least n bytes are buffered or timeout elapses.
func (t *TCP) WaitFor(n int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for len(t.buf) < n {
		if time.Now().After(deadline) {
			return fmt.Errorf("transport: timed out waiting for %d bytes, have %d", n, len(t.buf))
		}
		if t.conn == nil {
			return fmt.Errorf("transport: not connected")
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			remaining = time.Millisecond
		}
		t.conn.SetReadDeadline(time.Now().Add(remaining))
		var scratch [4096]byte
		read, err := t.conn.Read(scratch[:])
		if read > 0 {
			t.buf = append(t.buf, scratch[:read]...)
			t.bytesReceived.Add(uint64(read))
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			t.readErrors.Add(1)
			return fmt.Errorf("transport: read: %w", err)
		}
	}
	return nil
}

// Write sends src in full.
func (t *TCP) Write(src []byte) (int, error) {
	if t.conn == nil {
		return 0, fmt.Errorf("transport: not connected")
	}
	n, err := t.conn.Write(src)
	if n > 0 {
		t.bytesSent.Add(uint64(n))
	}
	if err != nil {
		return n, fmt.Errorf("transport: write: %w", err)
	}
	return n, nil
}

// Statistics returns a point-in-time snapshot of the transfer counters.
func (t *TCP) Statistics() Stats {
	return Stats{
		BytesSent:     t.bytesSent.Load(),
		BytesReceived: t.bytesReceived.Load(),
		Connects:      t.connects.Load(),
		Disconnects:   t.disconnects.Load(),
		ReadErrors:    t.readErrors.Load(),
	}
}
