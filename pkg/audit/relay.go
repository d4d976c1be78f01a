// pkg/audit/relay.go
package audit

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/joeydtaylor/electrician/pkg/builder"
	"github.com/joeydtaylor/steeze-rpc/pkg/codec"
)

// RelayOptions configures the electrician forward relay.
type RelayOptions struct {
	Targets        []string
	Topic          string
	CompressSnappy bool
	StaticHeaders  map[string]string

	TLSEnable    bool
	TLSClientCrt string
	TLSClientKey string
	TLSCA        string

	// AESKeyHex enables AES-GCM payload encryption (64 hex chars).
	AESKeyHex string

	// OAuth2 client credentials; enabled when issuer, id and secret are set.
	OAuthIssuer       string
	OAuthJWKSURL      string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthScopes       []string
	OAuthLeeway       time.Duration
}

func (o RelayOptions) oauthEnabled() bool {
	return o.OAuthIssuer != "" && o.OAuthClientID != "" && o.OAuthClientSecret != ""
}

type relayPublisher struct {
	submit func(context.Context, []byte) error
}

// NewRelayPublisher starts a ForwardRelay[[]byte] fed by a wire and returns a
// Publisher that submits JSON records into it. No targets yields Noop.
func NewRelayPublisher(ctx context.Context, o RelayOptions) (Publisher, error) {
	targets := make([]string, 0, len(o.Targets))
	for _, t := range o.Targets {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return Noop{}, nil
	}
	if strings.TrimSpace(o.Topic) == "" {
		return nil, fmt.Errorf("audit: topic required")
	}

	var aesKey string
	if o.AESKeyHex != "" {
		raw, err := hex.DecodeString(strings.TrimSpace(o.AESKeyHex))
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("audit: aes key must be 64 hex chars (32 bytes)")
		}
		aesKey = string(raw)
	}

	logger := builder.NewLogger(builder.LoggerWithDevelopment(false))
	wire := builder.NewWire[[]byte](ctx, builder.WireWithLogger[[]byte](logger))

	perf := builder.NewPerformanceOptions(o.CompressSnappy, builder.COMPRESS_SNAPPY)
	sec := builder.NewSecurityOptions(aesKey != "", builder.ENCRYPTION_AES_GCM)
	tlsCfg := builder.NewTlsClientConfig(
		o.TLSEnable,
		o.TLSClientCrt, o.TLSClientKey, o.TLSCA,
		tls.VersionTLS13, tls.VersionTLS13,
	)

	headers := map[string]string{"X-Relay-Topic": o.Topic, "Content-Type": codec.JSONStrict.ContentType()}
	for k, v := range o.StaticHeaders {
		headers[k] = v
	}

	var relayStart func(context.Context) error
	if o.oauthEnabled() {
		authOpts := builder.NewForwardRelayAuthenticationOptionsOAuth2(nil)
		if o.OAuthJWKSURL != "" {
			authOpts = builder.NewForwardRelayAuthenticationOptionsOAuth2(
				builder.NewForwardRelayOAuth2JWTOptions(o.OAuthIssuer, o.OAuthJWKSURL, []string{}, o.OAuthScopes, 300),
			)
		}
		leeway := o.OAuthLeeway
		if leeway <= 0 {
			leeway = 20 * time.Second
		}
		authHTTP := &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
			},
		}
		ts := builder.NewForwardRelayRefreshingClientCredentialsSource(
			o.OAuthIssuer, o.OAuthClientID, o.OAuthClientSecret, o.OAuthScopes, leeway, authHTTP,
		)

		relay := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](logger),
			builder.ForwardRelayWithTarget[[]byte](targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](headers),
			builder.ForwardRelayWithAuthenticationOptions[[]byte](authOpts),
			builder.ForwardRelayWithOAuthBearer[[]byte](ts),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart = relay.Start
	} else {
		relay := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](logger),
			builder.ForwardRelayWithTarget[[]byte](targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](headers),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart = relay.Start
	}

	if err := wire.Start(ctx); err != nil {
		return nil, fmt.Errorf("audit wire start: %w", err)
	}
	if err := relayStart(ctx); err != nil {
		return nil, fmt.Errorf("audit relay start: %w", err)
	}

	return &relayPublisher{
		submit: func(ctx context.Context, b []byte) error { return wire.Submit(ctx, b) },
	}, nil
}

func (p *relayPublisher) Publish(ctx context.Context, rec Record) error {
	return publishJSON(ctx, p.submit, rec)
}

func publishJSON(ctx context.Context, submit func(context.Context, []byte) error, rec Record) error {
	b, err := codec.JSONStrict.Marshal(rec)
	if err != nil {
		return fmt.Errorf("audit: encode: %w", err)
	}
	return submit(ctx, b)
}
