package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/flow/mapping"
)

func newDemoCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		save   bool
		id     uint64
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build a sample module wired for audio-reactive playback",
		Long: `Build a sample module: a media file through a blur whose opacity follows
the bass band, a layer whose visibility drives an inverted slave layer, and
a projector output.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := buildDemo(graph.ModuleID(id))

			if save {
				st, err := a.openStore()
				if err != nil {
					return err
				}
				defer st.Close()

				err = st.SaveModule(cmd.Context(), m)
				if err != nil {
					return err
				}

				a.logger.Info("demo saved", "id", m.ID, "path", st.Path())
			}

			if asJSON {
				data, err := json.MarshalIndent(m, "", "  ")
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), string(data))

				return nil
			}

			renderModule(cmd.OutOrStdout(), m)

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the module document instead of rendering it")
	cmd.Flags().BoolVar(&save, "save", false, "store the module in the project database")
	cmd.Flags().Uint64Var(&id, "id", 1, "module id")

	return cmd
}

// buildDemo returns a module exercising every mapping-relevant feature.
//
//	1 AudioFFT ─ Bass Out ──────────▶ 3 Blur (Trigger In ⇒ Opacity, Smoothed)
//	           └ Beat Out ──────────▶ 4 Layer (Trigger ⇒ Brightness, Fixed)
//	2 MediaFile ─ Media Out ─▶ 3 Blur ─ Media Out ─▶ 4 Layer ─ Output ─▶ 6 Projector
//	4 Layer (master) ─ Link Out ────▶ 5 Layer (slave, inverted)
func buildDemo(id graph.ModuleID) *graph.Module {
	m := graph.NewModule(id, "Demo")
	m.Color = graph.Palette[7]

	fft := m.AddPart(graph.TriggerAudioFFT{
		Band:      graph.BandBass,
		Threshold: 0.5,
		Outputs: graph.AudioTriggerOutputConfig{
			FrequencyBands: true,
			BeatOutput:     true,
		},
	}, graph.Vec2{X: 0, Y: 0})
	media := m.AddPart(graph.NewMediaFile("clips/intro.mp4"), graph.Vec2{X: 0, Y: 200})
	blur := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{X: 250, Y: 100})
	layer := m.AddPart(graph.LayerSingle{ID: 1, Name: "Main", Opacity: 1}, graph.Vec2{X: 500, Y: 100})
	shadow := m.AddPart(graph.LayerSingle{ID: 2, Name: "Shadow", Opacity: 1}, graph.Vec2{X: 500, Y: 300})
	out := m.AddPart(graph.NewProjector(1), graph.Vec2{X: 750, Y: 100})

	m.SetLinkData(layer, graph.LinkData{Mode: graph.LinkMaster, TriggerInputEnabled: true})
	m.SetLinkData(shadow, graph.LinkData{Mode: graph.LinkSlave, Behavior: graph.Inverted})
	m.UpdateAllSockets()

	fftPart, _ := m.Part(fft)
	bass, _ := fftPart.OutputIndex(graph.OutBass)
	beat, _ := fftPart.OutputIndex(graph.OutBeat)

	layerPart, _ := m.Part(layer)
	linkOut, _ := layerPart.OutputIndex(graph.SocketLinkOut)
	vis, _ := layerPart.InputIndex(graph.SocketVisibilityIn)

	shadowPart, _ := m.Part(shadow)
	linkIn, _ := shadowPart.InputIndex(graph.SocketLinkIn)

	m.AddConnection(fft, bass, blur, 1)
	m.AddConnection(fft, beat, layer, 1)
	m.AddConnection(fft, beat, layer, vis)
	m.AddConnection(media, 0, blur, 0)
	m.AddConnection(blur, 0, layer, 0)
	m.AddConnection(layer, 0, out, 0)
	m.AddConnection(layer, linkOut, shadow, linkIn)

	opacity := mapping.ForTarget(mapping.Target{Kind: mapping.TargetOpacity})
	opacity.Mode = mapping.SmoothedMode(0.05, 0.3)
	m.SetMapping(blur, 1, opacity)

	brightness := mapping.ForTarget(mapping.Target{Kind: mapping.TargetBrightness})
	brightness.Mode = mapping.Mode{Kind: mapping.Fixed}
	brightness.Min, brightness.Max = 0.6, 1
	m.SetMapping(layer, 1, brightness)

	m.SetMapping(shadow, linkIn, mapping.ForTarget(mapping.Target{Kind: mapping.TargetOpacity}))

	return m
}
