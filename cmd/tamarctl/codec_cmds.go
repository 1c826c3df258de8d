package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"github.com/railtwin/tamar"
	"github.com/railtwin/tamar/config"
	"github.com/railtwin/tamar/metrics"
)

func schemaFlag(cmd *cobra.Command) {
	cmd.Flags().String("schema", "schema.toml", "path to the schema TOML file")
}

func metricsPushFlag(cmd *cobra.Command) {
	cmd.Flags().String("metrics-push-addr", "",
		"if set, push this call's outcome to a Prometheus Pushgateway at this URL")
}

// recordCall observes op's outcome on a fresh Recorder and, if the
// caller passed --metrics-push-addr, pushes it to a Pushgateway —
// these one-shot commands exit before anything could scrape /metrics,
// so pushing is how their counters reach a real collector (spec.md's
// domain-stack prometheus wiring is otherwise unreachable outside
// `serve`).
func recordCall(cmd *cobra.Command, op string, comID uint32, warnings int, opErr error) error {
	addr, err := cmd.Flags().GetString("metrics-push-addr")
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(promReg)
	recorder.Observe(op, comID, warnings, opErr)

	if addr == "" {
		return nil
	}

	return push.New(addr, "tamarctl").Gatherer(promReg).Grouping("op", op).Push()
}

func loadRegistry(cmd *cobra.Command) (*tamar.Registry, error) {
	path, err := cmd.Flags().GetString("schema")
	if err != nil {
		return nil, err
	}

	return config.LoadFile(path)
}

func parseComID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid com id %q: %w", s, err)
	}

	return uint32(v), nil
}

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <comId> <host.bin> <out.bin>",
		Short: "Encode a host-image file to its packed wire form",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			comID, err := parseComID(args[0])
			if err != nil {
				return err
			}
			host, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			wire := make([]byte, len(host))
			res, encErr := tamar.Encode(reg, comID, host, wire, nil)
			if err := recordCall(cmd, "encode", comID, len(res.Warnings), encErr); err != nil {
				return err
			}
			if encErr != nil {
				return encErr
			}
			for _, w := range res.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w.Message)
			}

			return os.WriteFile(args[2], wire[:res.BytesUsed], 0o644)
		},
	}
	schemaFlag(cmd)
	metricsPushFlag(cmd)

	return cmd
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <comId> <wire.bin> <out.bin>",
		Short: "Decode a packed wire-form file to its host image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			comID, err := parseComID(args[0])
			if err != nil {
				return err
			}
			wire, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			size, sizeErr := tamar.SizeForComId(reg, comID, wire, nil)
			if sizeErr != nil {
				if err := recordCall(cmd, "decode", comID, 0, sizeErr); err != nil {
					return err
				}

				return sizeErr
			}

			host := make([]byte, size)
			_, decErr := tamar.Decode(reg, comID, wire, host, nil)
			if err := recordCall(cmd, "decode", comID, 0, decErr); err != nil {
				return err
			}
			if decErr != nil {
				return decErr
			}

			return os.WriteFile(args[2], host, 0o644)
		},
	}
	schemaFlag(cmd)
	metricsPushFlag(cmd)

	return cmd
}

func newSizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size <comId> <wire.bin>",
		Short: "Report the host byte length decoding a wire file would produce",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			comID, err := parseComID(args[0])
			if err != nil {
				return err
			}
			wire, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			size, sizeErr := tamar.SizeForComId(reg, comID, wire, nil)
			if err := recordCall(cmd, "size", comID, 0, sizeErr); err != nil {
				return err
			}
			if sizeErr != nil {
				return sizeErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), size)

			return nil
		},
	}
	schemaFlag(cmd)
	metricsPushFlag(cmd)

	return cmd
}
