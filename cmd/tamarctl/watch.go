package main

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/railtwin/tamar/config"
)

// newWatchCmd reloads a schema file on every write or create event,
// rebuilding the Registry each time, and reports whether its digest
// differs from the last successful load, so events that leave the
// schema unchanged are reported as such.
func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <schema.toml>",
		Short: "Reload a schema on change and report when it actually differs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()

			if err := watcher.Add(path); err != nil {
				return err
			}

			var lastDigest uint64
			if reg, err := config.LoadFile(path); err == nil {
				lastDigest = reg.Digest()
				fmt.Fprintf(cmd.OutOrStdout(), "watching %s (digest %016x)\n", path, lastDigest)
			}

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}

					reg, err := config.LoadFile(path)
					if err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), "reload failed:", err)

						continue
					}

					digest := reg.Digest()
					if digest == lastDigest {
						fmt.Fprintln(cmd.OutOrStdout(), "reloaded, schema unchanged")

						continue
					}
					lastDigest = digest
					fmt.Fprintf(cmd.OutOrStdout(), "reloaded, schema changed (digest %016x)\n", digest)

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}

					return err
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				}
			}
		},
	}
}
