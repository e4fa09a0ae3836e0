package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rf-tools/chanspector/control"
	"github.com/rf-tools/chanspector/dsp"
	"github.com/rf-tools/chanspector/inspector"
	"github.com/rf-tools/chanspector/mq"
)

// demoEngine is a throwaway engine — queue pair, table, handler, dispatch
// pump — backing the open/close/info/params subcommands. The engine has no
// network transport, so these subcommands drive the control protocol
// in-process through the blocking client, one short session per
// invocation, rather than attaching to a separately-running chaninspectord
// serve process.
func demoEngine(sampRate float64) (*control.Client, func()) {
	in := mq.New(nil)
	out := mq.New(nil)
	h := control.NewHandler(control.NewTable(), sampRate, out, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			m, ok := in.Read()
			if !ok {
				return
			}
			req, ok := m.Payload.(control.InspectorMsg)
			if !ok {
				continue
			}
			_ = h.Dispatch(&req)
		}
	}()
	stop := func() {
		in.Finalize()
		<-done
		out.Finalize()
	}
	return control.NewClient(in, out), stop
}

func openCmd() *cobra.Command {
	var centerHz, bandwidthHz float64
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open an inspector against a one-shot demo engine and print its handle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, stop := demoEngine(48000)
			defer stop()
			handle, err := cli.Open(dsp.Channel{CenterHz: centerHz, BandwidthHz: bandwidthHz})
			if err != nil {
				return err
			}
			fmt.Printf("handle=%d\n", handle)
			return nil
		},
	}
	cmd.Flags().Float64Var(&centerHz, "center-hz", 100e3, "channel center frequency, absolute Hz")
	cmd.Flags().Float64Var(&bandwidthHz, "bandwidth-hz", 10e3, "channel bandwidth, Hz")
	return cmd
}

func closeCmd() *cobra.Command {
	var handle int
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a handle on a one-shot demo engine (handle 0 is the only one that exists in that engine)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, stop := demoEngine(48000)
			defer stop()
			// Re-open handle 0 first since each invocation is a fresh engine.
			if _, err := cli.Open(dsp.Channel{CenterHz: 0, BandwidthHz: 10e3}); err != nil {
				return err
			}
			if err := cli.Close(handle); err != nil {
				return err
			}
			fmt.Printf("closed handle=%d\n", handle)
			return nil
		},
	}
	cmd.Flags().IntVar(&handle, "handle", 0, "inspector handle")
	return cmd
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Open an inspector then immediately print its baud estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, stop := demoEngine(48000)
			defer stop()
			handle, err := cli.Open(dsp.Channel{CenterHz: 0, BandwidthHz: 10e3})
			if err != nil {
				return err
			}
			info, err := cli.GetInfo(handle)
			if err != nil {
				return err
			}
			fmt.Printf("handle=%d baud.fac=%.2f baud.nln=%.2f\n", handle, info.Fac, info.Nln)
			return nil
		},
	}
}

func paramsCmd() *cobra.Command {
	var baud float64
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Open an inspector, set params, then print the params echo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, stop := demoEngine(48000)
			defer stop()
			handle, err := cli.Open(dsp.Channel{CenterHz: 0, BandwidthHz: 10e3})
			if err != nil {
				return err
			}
			if err := cli.SetParams(handle, inspector.Params{Baud: float32(baud), FCControl: inspector.FCManual}); err != nil {
				return err
			}
			params, err := cli.GetParams(handle)
			if err != nil {
				return err
			}
			fmt.Printf("handle=%d params=%+v\n", handle, params)
			return nil
		},
	}
	cmd.Flags().Float64Var(&baud, "baud", 1200, "baud rate to set, absolute Hz")
	return cmd
}
