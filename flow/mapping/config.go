package mapping

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TargetKind enumerates the parameters a trigger input can drive.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetOpacity
	TargetBrightness
	TargetContrast
	TargetSaturation
	TargetHueShift
	TargetScaleX
	TargetScaleY
	TargetRotation
	// TargetParam addresses an effect parameter by name.
	TargetParam
)

var targetNames = [...]string{
	TargetNone:       "None",
	TargetOpacity:    "Opacity",
	TargetBrightness: "Brightness",
	TargetContrast:   "Contrast",
	TargetSaturation: "Saturation",
	TargetHueShift:   "HueShift",
	TargetScaleX:     "ScaleX",
	TargetScaleY:     "ScaleY",
	TargetRotation:   "Rotation",
	TargetParam:      "Param",
}

const paramPrefix = "Param:"

// Target is the parameter a mapped trigger input writes to.
type Target struct {
	Kind  TargetKind
	Param string
}

// ParamTarget returns a target addressing the named effect parameter.
func ParamTarget(name string) Target {
	return Target{Kind: TargetParam, Param: name}
}

// IsNone reports whether the target disables the mapping.
func (t Target) IsNone() bool {
	return t.Kind == TargetNone
}

func (t Target) String() string {
	if t.Kind == TargetParam {
		return paramPrefix + t.Param
	}

	if t.Kind < 0 || int(t.Kind) >= len(targetNames) {
		return fmt.Sprintf("Target(%d)", int(t.Kind))
	}

	return targetNames[t.Kind]
}

// MarshalText encodes the target as "Opacity", "Param:blur_radius", ...
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (t *Target) UnmarshalText(text []byte) error {
	parsed, err := ParseTarget(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// ParseTarget parses a target name. Matching is case-insensitive; the empty
// string maps to TargetNone.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, nil
	}

	if len(s) > len(paramPrefix) && strings.EqualFold(s[:len(paramPrefix)], paramPrefix) {
		return ParamTarget(s[len(paramPrefix):]), nil
	}

	for kind, name := range targetNames {
		if TargetKind(kind) != TargetParam && strings.EqualFold(s, name) {
			return Target{Kind: TargetKind(kind)}, nil
		}
	}

	return Target{}, fmt.Errorf("%w: target %q", ErrUnknownName, s)
}

// ModeKind selects one of the four mapping laws.
type ModeKind int

const (
	Direct ModeKind = iota
	Fixed
	RandomInRange
	Smoothed
)

var modeNames = [...]string{
	Direct:        "Direct",
	Fixed:         "Fixed",
	RandomInRange: "RandomInRange",
	Smoothed:      "Smoothed",
}

func (k ModeKind) String() string {
	if k < 0 || int(k) >= len(modeNames) {
		return fmt.Sprintf("ModeKind(%d)", int(k))
	}

	return modeNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k ModeKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(modeNames) {
		return nil, fmt.Errorf("%w: mode %d", ErrUnknownName, int(k))
	}

	return []byte(modeNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ModeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseModeKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

// ParseModeKind parses a mode name case-insensitively.
func ParseModeKind(s string) (ModeKind, error) {
	s = strings.TrimSpace(s)
	for kind, name := range modeNames {
		if strings.EqualFold(s, name) {
			return ModeKind(kind), nil
		}
	}

	return Direct, fmt.Errorf("%w: mode %q", ErrUnknownName, s)
}

// Mode is the mapping law plus its parameters. Attack and Release are
// time constants in seconds and only apply to Smoothed.
type Mode struct {
	Kind    ModeKind `json:"kind"`
	Attack  float32  `json:"attack,omitempty"`
	Release float32  `json:"release,omitempty"`
}

// SmoothedMode returns a Smoothed mode with the given time constants.
func SmoothedMode(attack, release float32) Mode {
	return Mode{Kind: Smoothed, Attack: attack, Release: release}
}

// Config maps a raw trigger value on one input socket to a target parameter.
type Config struct {
	Target    Target  `json:"target"`
	Mode      Mode    `json:"mode"`
	Min       float32 `json:"min_value"`
	Max       float32 `json:"max_value"`
	Threshold float32 `json:"threshold"`
	Invert    bool    `json:"invert"`
}

// DefaultConfig returns the configuration a freshly mapped socket starts with.
func DefaultConfig() Config {
	return Config{
		Mode:      Mode{Kind: Direct},
		Min:       0,
		Max:       1,
		Threshold: 0.5,
	}
}

// ForTarget returns the default configuration aimed at target.
func ForTarget(target Target) Config {
	cfg := DefaultConfig()
	cfg.Target = target

	return cfg
}

// UnmarshalJSON fills fields missing from data with DefaultConfig values.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config

	v := plain(DefaultConfig())

	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}

	*c = Config(v)

	return nil
}
