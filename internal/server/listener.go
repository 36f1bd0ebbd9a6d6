package server

import (
	"fmt"
	"net"
	"time"

	"github.com/pires/go-proxyproto"
)

// proxyHeaderTimeout bounds how long a connection may take to send its
// PROXY protocol header.
const proxyHeaderTimeout = 10 * time.Second

// Listen binds a TCP listener on addr. With proxyProtocol set, PROXY protocol
// v1/v2 headers are accepted and the announced client address replaces the
// peer address.
func Listen(addr string, proxyProtocol bool) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if proxyProtocol {
		return &proxyproto.Listener{
			Listener:          ln,
			ReadHeaderTimeout: proxyHeaderTimeout,
		}, nil
	}

	return ln, nil
}
