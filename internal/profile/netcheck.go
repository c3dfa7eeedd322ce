// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pdiddy/compound-engine/pkg/types"
)

const (
	defaultProbeAddr    = "www.google.com:80"
	defaultProbeTimeout = 5 * time.Second
)

// CheckConnectivity dials a well-known host to verify the network is up
// before a pipeline run starts (R2.1). It returns nil when the dial
// succeeds; the connection itself is discarded.
func CheckConnectivity(ctx context.Context, cfg types.ProfileConfig) error {
	addr := cfg.ProbeAddr
	if addr == "" {
		addr = defaultProbeAddr
	}
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connectivity check failed: %w", err)
	}
	conn.Close()
	return nil
}
