package tls

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
	"github.com/spiffe/go-spiffe/v2/workloadapi"
	"go.uber.org/zap"
)

type TLSConfig struct {
	Enabled    bool   `envconfig:"TLS_ENABLED" default:"false"`
	SocketPath string `envconfig:"SPIRE_SOCKET_PATH" default:"unix:///run/spire/sockets/agent.sock"`
}

// LoadTLSConfig builds an mTLS server config from the SPIRE Workload API.
// Returns nil when TLS is disabled; the returned closer stops certificate
// rotation and must be called on shutdown.
func LoadTLSConfig(ctx context.Context, cfg *TLSConfig, logger *zap.Logger) (*tls.Config, func(), error) {
	if !cfg.Enabled {
		logger.Info("TLS is disabled")
		return nil, func() {}, nil
	}

	source, err := workloadapi.NewX509Source(
		ctx,
		workloadapi.WithClientOptions(
			workloadapi.WithAddr(cfg.SocketPath),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create X509Source: %w", err)
	}

	// The source rotates certificates internally; MTLSServerConfig picks up
	// fresh SVIDs per handshake.
	tlsConfig := tlsconfig.MTLSServerConfig(source, source, tlsconfig.AuthorizeAny())
	tlsConfig.MinVersion = tls.VersionTLS12

	logger.Info("SPIRE TLS configuration loaded",
		zap.String("socket_path", cfg.SocketPath),
		zap.Bool("mtls_enabled", true))

	return tlsConfig, func() { source.Close() }, nil
}
