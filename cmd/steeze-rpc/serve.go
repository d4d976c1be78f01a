package main

import (
	"github.com/joeydtaylor/steeze-rpc/pkg/functions"
	"github.com/joeydtaylor/steeze-rpc/pkg/serverfx"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge",
		Long:  "Serve the built-in functions on the invoke and JSON-RPC endpoints until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []serverfx.Option{serverfx.WithRegistry(functions.Register)}
			if configPath != "" {
				opts = append(opts, serverfx.WithConfigFile(configPath))
			}
			app := fx.New(
				serverfx.Module(opts...),
				fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: l}
				}),
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (.toml or .yaml); defaults to $STEEZE_RPC_CONFIG or ./steeze-rpc.toml")
	return cmd
}
