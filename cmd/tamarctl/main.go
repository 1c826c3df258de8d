// Command tamarctl drives the marshalling engine from the command
// line: load a schema, encode/decode/size a buffer against it, watch a
// schema file for changes, or serve its metrics over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tamarctl",
		Short: "Inspect and exercise a tamar dataset schema",
	}

	root.AddCommand(newLoadCmd())
	root.AddCommand(newEncodeCmd())
	root.AddCommand(newDecodeCmd())
	root.AddCommand(newSizeCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newServeCmd())

	return root
}
