package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrLongNight/MapFlow-sub000/flow/audio"
	"github.com/MrLongNight/MapFlow-sub000/flow/eval"
	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/internal/window"
)

type evalOptions struct {
	ticks     int
	dt        time.Duration
	tone      float64
	amplitude float64
	pulse     time.Duration
	window    string
	keys      []string
	triggers  []string
}

func newEvalCmd(a *app) *cobra.Command {
	opts := evalOptions{
		ticks:     30,
		dt:        20 * time.Millisecond,
		tone:      80,
		amplitude: 0.8,
		pulse:     500 * time.Millisecond,
		window:    "hann",
	}

	cmd := &cobra.Command{
		Use:   "eval <file.json|module-id>",
		Short: "Evaluate a module against a synthetic audio signal",
		Long: `Evaluate a module tick by tick. Audio triggers listen to a pulsed sine
tone run through the analyzer; other triggers can be driven with --trigger
and --key. Every tick prints the resolved parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModule(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			triggers, err := parseTriggers(opts.triggers)
			if err != nil {
				return err
			}

			return runEval(cmd.OutOrStdout(), m, opts, triggers, eval.New(eval.WithLogger(a.logger)))
		},
	}

	cmd.Flags().IntVar(&opts.ticks, "ticks", opts.ticks, "number of ticks")
	cmd.Flags().DurationVar(&opts.dt, "dt", opts.dt, "tick length")
	cmd.Flags().Float64Var(&opts.tone, "tone", opts.tone, "test tone frequency in Hz")
	cmd.Flags().Float64Var(&opts.amplitude, "amplitude", opts.amplitude, "test tone amplitude")
	cmd.Flags().DurationVar(&opts.pulse, "pulse", opts.pulse, "tone pulse period; 0 for a steady tone")
	cmd.Flags().StringVar(&opts.window, "window", opts.window,
		"analysis window: hann, hamming, blackman, blackmanharris, flattop or rectangular")
	cmd.Flags().StringSliceVar(&opts.keys, "key", nil, "pressed key codes")
	cmd.Flags().StringArrayVar(&opts.triggers, "trigger", nil, "explicit trigger outputs as part=v0,v1,...")

	return cmd
}

// parseTriggers parses "3=0.5,1" into part 3 with outputs [0.5, 1].
func parseTriggers(specs []string) (map[graph.PartID][]float32, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	out := make(map[graph.PartID][]float32, len(specs))

	for _, spec := range specs {
		id, values, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("trigger %q: want part=v0,v1", spec)
		}

		n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("trigger %q: %w", spec, err)
		}

		var vs []float32

		for _, v := range strings.Split(values, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
			if err != nil {
				return nil, fmt.Errorf("trigger %q: %w", spec, err)
			}

			vs = append(vs, float32(f))
		}

		out[graph.PartID(n)] = vs
	}

	return out, nil
}

func runEval(w io.Writer, m *graph.Module, opts evalOptions, triggers map[graph.PartID][]float32, e *eval.Evaluator) error {
	if opts.dt <= 0 {
		return errors.New("--dt must be positive")
	}

	win, err := window.ParseType(opts.window)
	if err != nil {
		return err
	}

	analyzer, err := audio.NewAnalyzer(audio.WithWindow(win))
	if err != nil {
		return err
	}

	rate := analyzer.Config().SampleRate
	block := max(int(math.Round(rate*opts.dt.Seconds())), 1)

	keys := make(map[string]bool, len(opts.keys))
	for _, k := range opts.keys {
		keys[k] = true
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICK\tTIME\tBEAT\tPARAMS")

	var (
		elapsed time.Duration
		phase   int
	)

	for tick := range opts.ticks {
		samples := make([]float32, block)
		for i := range samples {
			t := float64(phase+i) / rate
			samples[i] = float32(opts.amplitude * envelope(t, opts.pulse) * math.Sin(2*math.Pi*opts.tone*t))
		}

		phase += block
		elapsed += opts.dt

		analysis := analyzer.Process(samples, elapsed.Seconds())
		res := e.Evaluate(m, eval.Snapshot{
			Audio:    analysis,
			Keys:     keys,
			Triggers: triggers,
			Elapsed:  elapsed,
			Dt:       opts.dt,
		})

		params := make([]string, 0, len(res.Params))
		for _, p := range res.Params {
			params = append(params, fmt.Sprintf("%d.%s=%.3f", p.Part, p.Target, p.Value))
		}

		beat := ""
		if analysis.Beat {
			beat = "●"
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", tick, elapsed, beat, strings.Join(params, " "))
	}

	return tw.Flush()
}

// envelope is 1 for the first quarter of every pulse period and 0.05 for
// the rest, or 1 throughout when period is 0.
func envelope(t float64, period time.Duration) float64 {
	if period <= 0 {
		return 1
	}

	p := period.Seconds()
	if math.Mod(t, p) < p/4 {
		return 1
	}

	return 0.05
}
