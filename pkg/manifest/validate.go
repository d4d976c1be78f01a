package manifest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

// Validate normalizes paths and rejects unusable settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Key) == "" {
		return errors.New("auth.key is required")
	}
	if strings.TrimSpace(c.Server.Listen) == "" {
		return errors.New("server.listen is required")
	}

	p, err := normalizePath(c.Server.Path)
	if err != nil {
		return fmt.Errorf("server.path: %w", err)
	}
	c.Server.Path = p
	if c.Server.JSONRPCPath != "" {
		rp, err := normalizePath(c.Server.JSONRPCPath)
		if err != nil {
			return fmt.Errorf("server.jsonrpc_path: %w", err)
		}
		if rp == p {
			return errors.New("server.jsonrpc_path must differ from server.path")
		}
		c.Server.JSONRPCPath = rp
	}
	for _, reserved := range []string{"/metrics", "/ping", "/functions"} {
		if c.Server.Path == reserved || c.Server.JSONRPCPath == reserved {
			return fmt.Errorf("%s is reserved", reserved)
		}
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("server.tls_cert and server.tls_key must be set together")
	}

	if c.Dispatch.TimeoutMS < 0 {
		return errors.New("dispatch.timeout_ms must be >= 0")
	}
	seen := map[string]struct{}{}
	for i, n := range c.Dispatch.Functions {
		n = strings.TrimSpace(n)
		if n == "" {
			return fmt.Errorf("dispatch.functions[%d] is empty", i)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("dispatch.functions: duplicate %q", n)
		}
		seen[n] = struct{}{}
		c.Dispatch.Functions[i] = n
	}

	if len(c.Audit.Targets) > 0 {
		if strings.TrimSpace(c.Audit.Topic) == "" {
			return errors.New("audit.topic required when audit.targets is set")
		}
		if t := c.Audit.TLS; t.Enable {
			if t.ClientCert == "" || t.ClientKey == "" || t.CA == "" {
				return errors.New("audit.tls: client_cert, client_key, and ca are required when enable=true")
			}
		}
		if k := c.Audit.AESKeyHex; k != "" {
			if b, err := hex.DecodeString(k); err != nil || len(b) != 32 {
				return errors.New("audit.aes_key_hex must be 64 hex chars")
			}
		}
		oa := c.Audit.OAuth
		set := 0
		for _, v := range []string{oa.Issuer, oa.ClientID, oa.ClientSecret} {
			if strings.TrimSpace(v) != "" {
				set++
			}
		}
		if set != 0 && set != 3 {
			return errors.New("audit.oauth: issuer, client_id and client_secret must be set together")
		}
		if oa.RefreshLeeway != "" {
			if _, err := time.ParseDuration(oa.RefreshLeeway); err != nil {
				return fmt.Errorf("audit.oauth.refresh_leeway: %w", err)
			}
		}
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return errors.New("tracing.sample_rate must be in [0,1]")
	}
	if c.Tracing.Enabled && strings.TrimSpace(c.Tracing.Endpoint) == "" {
		return errors.New("tracing.endpoint required when tracing is enabled")
	}

	if c.Client.TimeoutMS < 0 {
		return errors.New("client.timeout_ms must be >= 0")
	}
	if c.Client.Endpoint != "" {
		if err := ValidateEndpoint(c.Client.Endpoint); err != nil {
			return fmt.Errorf("client.endpoint: %w", err)
		}
	}
	return nil
}

// ValidateEndpoint requires an absolute http(s) URL.
func ValidateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q not supported", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

func normalizePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errors.New("path is required")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p != "/" {
		p = path.Clean(p)
	}
	return p, nil
}
