package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func functionsCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "functions",
		Short: "List registered functions",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.build()
			if err != nil {
				return err
			}
			names, err := c.Functions(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
