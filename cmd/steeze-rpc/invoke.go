package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joeydtaylor/steeze-rpc/pkg/client"
	"github.com/joeydtaylor/steeze-rpc/pkg/codec"
	"github.com/joeydtaylor/steeze-rpc/pkg/core"
	"github.com/joeydtaylor/steeze-rpc/pkg/manifest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type clientFlags struct {
	configPath  string
	endpoint    string
	rpcEndpoint string
	key         string
	timeout     time.Duration
	legacyArgs  bool
	verbose     bool
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Config file to read [client], [auth] and [args] from")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "Invoke endpoint URL (default $"+core.EnvClientBase+")")
	cmd.Flags().StringVar(&f.rpcEndpoint, "rpc-endpoint", "", "JSON-RPC endpoint URL (default: endpoint host + server.jsonrpc_path)")
	cmd.Flags().StringVar(&f.key, "key", "", "Shared secret (default $"+core.EnvKey+")")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Call timeout (default client.timeout_ms)")
	cmd.Flags().BoolVar(&f.legacyArgs, "legacy-args", false, "Send args in the comma-joined form")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log requests to stderr")
}

// build resolves flags over the environment over the config file.
func (f *clientFlags) build() (*client.Client, error) {
	cfg := manifest.Default()
	if f.configPath != "" {
		loaded, err := core.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	endpoint := first(f.endpoint, os.Getenv(core.EnvClientBase), cfg.Client.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint required (--endpoint, client.endpoint or $%s)", core.EnvClientBase)
	}
	rpcEndpoint := f.rpcEndpoint
	if rpcEndpoint == "" && cfg.Server.JSONRPCPath != "" {
		if u, err := url.Parse(endpoint); err == nil {
			u.Path, u.RawQuery = cfg.Server.JSONRPCPath, ""
			rpcEndpoint = u.String()
		}
	}

	timeout := f.timeout
	if timeout <= 0 {
		timeout = cfg.ClientTimeout()
	}

	log := zap.NewNop()
	if f.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		log = l
	}

	return client.New(client.Options{
		Endpoint:    endpoint,
		RPCEndpoint: rpcEndpoint,
		Key:         first(f.key, os.Getenv(core.EnvKey), cfg.Auth.Key),
		Timeout:     timeout,
		Args:        codec.ArgsFor(f.legacyArgs || cfg.Args.Legacy),
		Logger:      log,
	})
}

func invokeCmd() *cobra.Command {
	var (
		flags   clientFlags
		jsonRPC bool
	)

	cmd := &cobra.Command{
		Use:   "invoke NAME [ARGS...]",
		Short: "Call a registered function",
		Long:  "Call a registered function and print its value as JSON; a failure value exits non-zero",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.build()
			if err != nil {
				return err
			}

			call := c.Call
			if jsonRPC {
				call = c.CallJSONRPC
			}
			rep, callErr := call(context.Background(), args[0], args[1:]...)
			if rep != nil {
				b, err := codec.JSON.Marshal(rep.Value)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			}
			return callErr
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonRPC, "jsonrpc", false, "Call through the JSON-RPC endpoint")
	return cmd
}

func first(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
