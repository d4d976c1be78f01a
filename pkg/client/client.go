// Package client calls a steeze-rpc bridge over HTTP.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/joeydtaylor/steeze-rpc/pkg/codec"
	"github.com/joeydtaylor/steeze-rpc/pkg/envelope"
	"github.com/joeydtaylor/steeze-rpc/pkg/manifest"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a call when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a reply is read.
const maxBody = 8 << 20

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type Options struct {
	// Endpoint is the GET invoke URL, e.g. http://localhost:4000/exec.
	Endpoint string
	// RPCEndpoint is the JSON-RPC URL used by CallJSONRPC.
	RPCEndpoint string
	Key         string
	Timeout     time.Duration
	HTTPClient  HTTPDoer
	// Args must match the server's args format; defaults to codec.JSONArray.
	Args   codec.Args
	Logger *zap.Logger
}

type Client struct {
	endpoint    *url.URL
	rpcEndpoint string
	key         string
	timeout     time.Duration
	hc          HTTPDoer
	args        codec.Args
	log         *zap.Logger
}

// Reply is a decoded invoke response with its status tag.
type Reply struct {
	Value  any
	OK     bool
	Status string
}

func New(o Options) (*Client, error) {
	if err := manifest.ValidateEndpoint(o.Endpoint); err != nil {
		return nil, fmt.Errorf("steeze-rpc: endpoint: %w", err)
	}
	u, _ := url.Parse(o.Endpoint)
	if o.RPCEndpoint != "" {
		if err := manifest.ValidateEndpoint(o.RPCEndpoint); err != nil {
			return nil, fmt.Errorf("steeze-rpc: rpc endpoint: %w", err)
		}
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	if o.Args == nil {
		o.Args = codec.JSONArray
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return &Client{
		endpoint:    u,
		rpcEndpoint: o.RPCEndpoint,
		key:         o.Key,
		timeout:     o.Timeout,
		hc:          o.HTTPClient,
		args:        o.Args,
		log:         o.Logger,
	}, nil
}

// Invoke returns the envelope's value verbatim. A value such as
// "Error: boom" is data here, not an error; use Call to read the tag.
func (c *Client) Invoke(ctx context.Context, name string, args ...string) (any, error) {
	rep, err := c.get(ctx, name, args)
	if err != nil {
		return nil, err
	}
	return rep.Value, nil
}

// Call is Invoke with the server's status tag applied: failures come back
// as *RemoteError alongside the reply.
func (c *Client) Call(ctx context.Context, name string, args ...string) (*Reply, error) {
	rep, err := c.get(ctx, name, args)
	if err != nil {
		return nil, err
	}
	if !rep.OK {
		return rep, remoteError(rep)
	}
	return rep, nil
}

// CallJSONRPC invokes name through the JSON-RPC endpoint.
func (c *Client) CallJSONRPC(ctx context.Context, name string, args ...string) (*Reply, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNoFunctionName
	}
	if c.rpcEndpoint == "" {
		return nil, errors.New("steeze-rpc: rpc endpoint not configured")
	}
	body, err := json2.EncodeClientRequest(envelope.RPCMethod, &envelope.InvokeArgs{Name: name, Args: args, Key: c.key})
	if err != nil {
		return nil, fmt.Errorf("steeze-rpc: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("steeze-rpc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var out envelope.InvokeReply
	if err := json2.DecodeClientResponse(bytes.NewReader(raw), &out); err != nil {
		return nil, fmt.Errorf("steeze-rpc: decode response: %w", err)
	}
	rep := &Reply{Value: out.Value, OK: out.OK, Status: statusFor(out)}
	if !rep.OK {
		return rep, remoteError(rep)
	}
	return rep, nil
}

// Functions lists the names the server exposes. endpoint's path is replaced by /functions.
func (c *Client) Functions(ctx context.Context) ([]string, error) {
	u := *c.endpoint
	u.Path = "/functions"
	u.RawQuery = url.Values{"key": {c.key}}.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("steeze-rpc: build request: %w", err)
	}
	raw, status, err := c.doTagged(req)
	if err != nil {
		return nil, err
	}
	if status == envelope.KindUnauthorized.String() {
		return nil, &RemoteError{Status: status, Message: envelope.KeyErrorValue}
	}
	var out struct {
		Functions []string `json:"functions"`
	}
	if err := codec.JSON.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("steeze-rpc: decode functions: %w", err)
	}
	return out.Functions, nil
}

func (c *Client) get(ctx context.Context, name string, args []string) (*Reply, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNoFunctionName
	}
	enc, err := c.args.Encode(args)
	if err != nil {
		return nil, fmt.Errorf("steeze-rpc: encode args: %w", err)
	}

	u := *c.endpoint
	q := u.Query()
	q.Set("name", name)
	if enc != "" {
		q.Set("args", enc)
	}
	q.Set("key", c.key)
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("steeze-rpc: build request: %w", err)
	}

	raw, status, err := c.doTagged(req)
	if err != nil {
		return nil, err
	}
	var env envelope.Envelope
	if err := codec.JSON.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("steeze-rpc: decode envelope: %w", err)
	}
	rep := &Reply{Value: env.Value, Status: status}
	rep.OK = status == envelope.KindSuccess.String()
	if status == "" {
		rep.OK, rep.Status = legacyStatus(env.Value)
	}
	return rep, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	b, _, err := c.doTagged(req)
	return b, err
}

func (c *Client) doTagged(req *http.Request) ([]byte, string, error) {
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("steeze-rpc: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, "", fmt.Errorf("steeze-rpc: read response: %w", err)
	}
	c.log.Debug("rpc call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("lat", time.Since(start)),
	)
	if resp.StatusCode != http.StatusOK {
		return nil, "", &TransportError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	return b, resp.Header.Get(envelope.HeaderStatus), nil
}

// legacyStatus classifies replies from servers that send no status header.
func legacyStatus(v any) (bool, string) {
	s, _ := v.(string)
	switch {
	case s == envelope.KeyErrorValue:
		return false, envelope.KindUnauthorized.String()
	case strings.HasPrefix(s, envelope.ErrorPrefix):
		return false, envelope.KindFailure.String()
	}
	return true, envelope.KindSuccess.String()
}

func statusFor(r envelope.InvokeReply) string {
	if r.OK {
		return envelope.KindSuccess.String()
	}
	if s, _ := r.Value.(string); s == envelope.KeyErrorValue {
		return envelope.KindUnauthorized.String()
	}
	return envelope.KindFailure.String()
}

func remoteError(rep *Reply) error {
	msg, _ := rep.Value.(string)
	return &RemoteError{Status: rep.Status, Message: msg}
}
