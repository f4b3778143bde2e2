package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
)

type socketsOptions struct {
	master       bool
	slave        bool
	triggerInput bool
	audioAll     bool
}

func newSocketsCmd() *cobra.Command {
	var opts socketsOptions

	cmd := &cobra.Command{
		Use:   "sockets [category ...]",
		Short: "List the socket schema of every part kind",
		Long: `List the input and output sockets every registered part kind exposes.

Link flags apply the link overlay to every kind, the way a part with that
link state would resolve its sockets.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.master && opts.slave {
				return errors.New("--master and --slave are mutually exclusive")
			}

			categories := graph.Categories()

			if len(args) > 0 {
				categories = categories[:0:0]

				for _, arg := range args {
					c, err := graph.ParseCategory(arg)
					if err != nil {
						return err
					}

					categories = append(categories, c)
				}
			}

			return writeSocketTable(cmd.OutOrStdout(), graph.Builtins(), categories, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.master, "master", false, "resolve as link master")
	cmd.Flags().BoolVar(&opts.slave, "slave", false, "resolve as link slave")
	cmd.Flags().BoolVar(&opts.triggerInput, "trigger-input", false, "enable the visibility trigger input")
	cmd.Flags().BoolVar(&opts.audioAll, "audio-all", false, "enable every AudioFFT output group")

	return cmd
}

func (o socketsOptions) link() graph.LinkData {
	link := graph.LinkData{TriggerInputEnabled: o.triggerInput}

	switch {
	case o.master:
		link.Mode = graph.LinkMaster
	case o.slave:
		link.Mode = graph.LinkSlave
	}

	return link
}

func writeSocketTable(w io.Writer, reg *graph.Registry, categories []graph.Category, opts socketsOptions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tKIND\tINPUTS\tOUTPUTS")

	for _, c := range categories {
		for _, kind := range reg.Kinds(c) {
			pt := reg.Lookup(c, kind)()

			if fft, ok := pt.(graph.TriggerAudioFFT); ok && opts.audioAll {
				fft.Outputs = graph.AudioTriggerOutputConfig{
					FrequencyBands: true,
					VolumeOutputs:  true,
					BeatOutput:     true,
					BPMOutput:      true,
				}
				pt = fft
			}

			inputs, outputs := graph.ResolveSockets(pt, opts.link())
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c, kind, socketList(inputs), socketList(outputs))
		}
	}

	return tw.Flush()
}

func socketList(sockets []graph.Socket) string {
	if len(sockets) == 0 {
		return "-"
	}

	names := make([]string, len(sockets))
	for i, s := range sockets {
		names[i] = s.Name
	}

	return strings.Join(names, ", ")
}
