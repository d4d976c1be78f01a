package core

import (
	"os"
	"strings"

	manifest "github.com/joeydtaylor/steeze-rpc/pkg/manifest"
)

// Environment overrides, applied after the config file.
const (
	EnvListen     = "SERVER_LISTEN_ADDRESS"
	EnvTLSCert    = "SSL_SERVER_CERTIFICATE"
	EnvTLSKey     = "SSL_SERVER_KEY"
	EnvKey        = "STEEZE_RPC_KEY"
	EnvAudit      = "ELECTRICIAN_TARGET" // comma-separated
	EnvClientBase = "STEEZE_RPC_ENDPOINT"
)

func applyEnv(cfg *manifest.Config) {
	if v := env(EnvListen); v != "" {
		cfg.Server.Listen = v
	}
	if v := env(EnvTLSCert); v != "" {
		cfg.Server.TLSCert = v
	}
	if v := env(EnvTLSKey); v != "" {
		cfg.Server.TLSKey = v
	}
	if v := env(EnvKey); v != "" {
		cfg.Auth.Key = v
	}
	if v := env(EnvAudit); v != "" {
		var targets []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				targets = append(targets, t)
			}
		}
		cfg.Audit.Targets = targets
	}
	if v := env(EnvClientBase); v != "" {
		cfg.Client.Endpoint = v
	}
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }
