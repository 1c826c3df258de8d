package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/railtwin/tamar/config"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <schema.toml>",
		Short: "Parse and validate a schema, printing a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := config.LoadFile(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema ok: max depth %d, digest %016x\n", reg.MaxDepth(), reg.Digest())

			return nil
		},
	}
}
