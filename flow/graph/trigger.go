package graph

import (
	"encoding/json"
	"fmt"
	"slices"
)

// AudioBand selects the analysis value an AudioFFT trigger listens to.
type AudioBand int

const (
	BandSubBass AudioBand = iota
	BandBass
	BandLowMid
	BandMid
	BandHighMid
	BandUpperMid
	BandPresence
	BandBrilliance
	BandAir
	BandPeak
	BandBPM
)

var audioBandNames = enumNames{
	"SubBass", "Bass", "LowMid", "Mid", "HighMid", "UpperMid",
	"Presence", "Brilliance", "Air", "Peak", "BPM",
}

func (b AudioBand) String() string { return audioBandNames.format(int(b), "AudioBand") }

// MarshalText implements encoding.TextMarshaler.
func (b AudioBand) MarshalText() ([]byte, error) { return audioBandNames.marshal(int(b), "band") }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *AudioBand) UnmarshalText(text []byte) error {
	v, err := audioBandNames.parse(string(text), "band")
	if err != nil {
		return err
	}

	*b = AudioBand(v)

	return nil
}

// Output socket names of the AudioFFT trigger, in emission order.
const (
	OutSubBass    = "SubBass Out"
	OutBass       = "Bass Out"
	OutLowMid     = "LowMid Out"
	OutMid        = "Mid Out"
	OutHighMid    = "HighMid Out"
	OutUpperMid   = "UpperMid Out"
	OutPresence   = "Presence Out"
	OutBrilliance = "Brilliance Out"
	OutAir        = "Air Out"
	OutRMS        = "RMS Volume"
	OutPeak       = "Peak Volume"
	OutBeat       = "Beat Out"
	OutBPM        = "BPM Out"
)

// BandOutputNames lists the nine frequency band outputs, lowest first.
var BandOutputNames = [9]string{
	OutSubBass, OutBass, OutLowMid, OutMid, OutHighMid,
	OutUpperMid, OutPresence, OutBrilliance, OutAir,
}

// NameSet is a set of socket names, encoded as a sorted JSON array.
type NameSet map[string]struct{}

// Has reports whether name is in the set. A nil set is empty.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]

	return ok
}

// Names returns the members in sorted order.
func (s NameSet) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}

	slices.Sort(out)

	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s NameSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON decodes an array of names.
func (s *NameSet) UnmarshalJSON(data []byte) error {
	var names []string

	err := json.Unmarshal(data, &names)
	if err != nil {
		return fmt.Errorf("graph: name set: %w", err)
	}

	set := make(NameSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	*s = set

	return nil
}

// AudioTriggerOutputConfig selects which outputs an AudioFFT trigger
// exposes and which of them are inverted.
type AudioTriggerOutputConfig struct {
	FrequencyBands  bool    `json:"frequency_bands"`
	VolumeOutputs   bool    `json:"volume_outputs"`
	BeatOutput      bool    `json:"beat_output"`
	BPMOutput       bool    `json:"bpm_output"`
	InvertedOutputs NameSet `json:"inverted_outputs,omitempty"`
}

// DefaultAudioOutputs enables only the beat output.
func DefaultAudioOutputs() AudioTriggerOutputConfig {
	return AudioTriggerOutputConfig{BeatOutput: true}
}

// UnmarshalJSON keeps the defaults for absent fields.
func (c *AudioTriggerOutputConfig) UnmarshalJSON(data []byte) error {
	type plain AudioTriggerOutputConfig

	out := plain(DefaultAudioOutputs())

	err := json.Unmarshal(data, &out)
	if err != nil {
		return fmt.Errorf("graph: audio outputs: %w", err)
	}

	*c = AudioTriggerOutputConfig(out)

	return nil
}

// GenerateOutputs returns the output sockets for this configuration: the
// nine bands, then RMS and Peak volume, then Beat, then BPM, each group
// only when enabled. When nothing is enabled a single Beat output is
// returned so the trigger is never without an output.
func (c AudioTriggerOutputConfig) GenerateOutputs() []Socket {
	var out []Socket

	if c.FrequencyBands {
		for _, name := range BandOutputNames {
			out = append(out, Socket{Name: name, Type: SocketTrigger})
		}
	}

	if c.VolumeOutputs {
		out = append(out,
			Socket{Name: OutRMS, Type: SocketTrigger},
			Socket{Name: OutPeak, Type: SocketTrigger},
		)
	}

	if c.BeatOutput {
		out = append(out, Socket{Name: OutBeat, Type: SocketTrigger})
	}

	if c.BPMOutput {
		out = append(out, Socket{Name: OutBPM, Type: SocketTrigger})
	}

	if len(out) == 0 {
		out = append(out, Socket{Name: OutBeat, Type: SocketTrigger})
	}

	return out
}

// IsInverted reports whether the named output is inverted.
func (c AudioTriggerOutputConfig) IsInverted(name string) bool {
	return c.InvertedOutputs.Has(name)
}

// SetInverted returns a copy of c with the named output's inversion set.
func (c AudioTriggerOutputConfig) SetInverted(name string, inverted bool) AudioTriggerOutputConfig {
	set := make(NameSet, len(c.InvertedOutputs)+1)
	for k := range c.InvertedOutputs {
		set[k] = struct{}{}
	}

	if inverted {
		set[name] = struct{}{}
	} else {
		delete(set, name)
	}

	c.InvertedOutputs = set

	return c
}

// TriggerAudioFFT emits values from the audio analysis.
type TriggerAudioFFT struct {
	triggerPart

	Band      AudioBand                `json:"band"`
	Threshold float32                  `json:"threshold"`
	Outputs   AudioTriggerOutputConfig `json:"output_config"`
}

// TriggerBeat emits the beat pulse of the audio analysis.
type TriggerBeat struct {
	triggerPart
}

// TriggerRandom fires at random with the given probability per tick.
type TriggerRandom struct {
	triggerPart

	MinIntervalMs uint32  `json:"min_interval_ms"`
	MaxIntervalMs uint32  `json:"max_interval_ms"`
	Probability   float32 `json:"probability"`
}

// TriggerFixed fires a short pulse at a fixed interval.
type TriggerFixed struct {
	triggerPart

	IntervalMs uint32 `json:"interval_ms"`
	OffsetMs   uint32 `json:"offset_ms"`
}

// TriggerMidi listens to a MIDI note.
type TriggerMidi struct {
	triggerPart

	Device  string `json:"device"`
	Channel uint8  `json:"channel"`
	Note    uint8  `json:"note"`
}

// TriggerOsc listens to an OSC address.
type TriggerOsc struct {
	triggerPart

	Address string `json:"address"`
}

// TriggerShortcut fires while a key is held.
type TriggerShortcut struct {
	triggerPart

	KeyCode   string `json:"key_code"`
	Modifiers uint8  `json:"modifiers"`
}

func (TriggerAudioFFT) Kind() string { return "AudioFFT" }
func (TriggerBeat) Kind() string     { return "Beat" }
func (TriggerRandom) Kind() string   { return "Random" }
func (TriggerFixed) Kind() string    { return "Fixed" }
func (TriggerMidi) Kind() string     { return "Midi" }
func (TriggerOsc) Kind() string      { return "Osc" }
func (TriggerShortcut) Kind() string { return "Shortcut" }
