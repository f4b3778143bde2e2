package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// BlendMode is a compositing mode for layers, sources and blend modulizers.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendAdd
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDifference
	BlendExclusion
)

var blendModeNames = enumNames{"Normal", "Add", "Multiply", "Screen", "Overlay", "Difference", "Exclusion"}

func (b BlendMode) String() string { return blendModeNames.format(int(b), "BlendMode") }

// MarshalText implements encoding.TextMarshaler.
func (b BlendMode) MarshalText() ([]byte, error) { return blendModeNames.marshal(int(b), "blend mode") }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BlendMode) UnmarshalText(text []byte) error {
	v, err := blendModeNames.parse(string(text), "blend mode")
	if err != nil {
		return err
	}

	*b = BlendMode(v)

	return nil
}

// EffectType names a visual effect of an Effect modulizer.
type EffectType int

const (
	EffectBlur EffectType = iota
	EffectSharpen
	EffectInvert
	EffectThreshold
	EffectBrightness
	EffectContrast
	EffectSaturation
	EffectHueShift
	EffectColorize
	EffectWave
	EffectSpiral
	EffectPinch
	EffectMirror
	EffectKaleidoscope
	EffectPixelate
	EffectHalftone
	EffectEdgeDetect
	EffectPosterize
	EffectGlitch
	EffectRgbSplit
	EffectChromaticAberration
	EffectVHS
	EffectFilmGrain
	EffectVignette
)

var effectTypeNames = enumNames{
	"Blur", "Sharpen", "Invert", "Threshold", "Brightness", "Contrast",
	"Saturation", "HueShift", "Colorize", "Wave", "Spiral", "Pinch",
	"Mirror", "Kaleidoscope", "Pixelate", "Halftone", "EdgeDetect", "Posterize",
	"Glitch", "RgbSplit", "ChromaticAberration", "VHS", "FilmGrain", "Vignette",
}

func (e EffectType) String() string { return effectTypeNames.format(int(e), "EffectType") }

// MarshalText implements encoding.TextMarshaler.
func (e EffectType) MarshalText() ([]byte, error) { return effectTypeNames.marshal(int(e), "effect") }

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EffectType) UnmarshalText(text []byte) error {
	v, err := effectTypeNames.parse(string(text), "effect")
	if err != nil {
		return err
	}

	*e = EffectType(v)

	return nil
}

// DefaultParams returns the default parameter set of the effect.
func (e EffectType) DefaultParams() map[string]float32 {
	switch e {
	case EffectBlur:
		return map[string]float32{"radius": 5, "samples": 9}
	case EffectPixelate:
		return map[string]float32{"pixel_size": 8}
	case EffectFilmGrain:
		return map[string]float32{"amount": 0.1, "speed": 1}
	case EffectVignette:
		return map[string]float32{"radius": 0.5, "softness": 0.5}
	case EffectWave, EffectSpiral, EffectPinch, EffectGlitch:
		return map[string]float32{"amount": 0.5, "speed": 1}
	default:
		return map[string]float32{"amount": 1}
	}
}

// ShapeKind is the geometry of a Shape mask.
type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeRectangle
	ShapeRoundedRect
	ShapeStar
	ShapeEllipse
)

var shapeKindNames = enumNames{"Circle", "Rectangle", "RoundedRect", "Star", "Ellipse"}

func (s ShapeKind) String() string { return shapeKindNames.format(int(s), "ShapeKind") }

// MarshalText implements encoding.TextMarshaler.
func (s ShapeKind) MarshalText() ([]byte, error) { return shapeKindNames.marshal(int(s), "shape") }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ShapeKind) UnmarshalText(text []byte) error {
	v, err := shapeKindNames.parse(string(text), "shape")
	if err != nil {
		return err
	}

	*s = ShapeKind(v)

	return nil
}

// SourceMediaFile plays a video or image file.
type SourceMediaFile struct {
	sourcePart

	Path           string     `json:"path"`
	Speed          float32    `json:"speed"`
	Loop           bool       `json:"loop_enabled"`
	StartTime      float32    `json:"start_time"`
	EndTime        float32    `json:"end_time"`
	Opacity        float32    `json:"opacity"`
	Blend          *BlendMode `json:"blend_mode,omitempty"`
	Brightness     float32    `json:"brightness"`
	Contrast       float32    `json:"contrast"`
	Saturation     float32    `json:"saturation"`
	HueShift       float32    `json:"hue_shift"`
	ScaleX         float32    `json:"scale_x"`
	ScaleY         float32    `json:"scale_y"`
	Rotation       float32    `json:"rotation"`
	OffsetX        float32    `json:"offset_x"`
	OffsetY        float32    `json:"offset_y"`
	FlipHorizontal bool       `json:"flip_horizontal"`
	FlipVertical   bool       `json:"flip_vertical"`
	Reverse        bool       `json:"reverse_playback"`
}

// NewMediaFile returns a media file source with neutral color and
// transform settings.
func NewMediaFile(path string) SourceMediaFile {
	return SourceMediaFile{
		Path:       path,
		Speed:      1,
		Loop:       true,
		Opacity:    1,
		Contrast:   1,
		Saturation: 1,
		ScaleX:     1,
		ScaleY:     1,
	}
}

// ShaderParam is a named shader uniform.
type ShaderParam struct {
	Name  string  `json:"name"`
	Value float32 `json:"value"`
}

// SourceShader renders a generator shader.
type SourceShader struct {
	sourcePart

	Name   string        `json:"name"`
	Params []ShaderParam `json:"params"`
}

// SourceLiveInput captures a camera or capture device.
type SourceLiveInput struct {
	sourcePart

	DeviceID uint32 `json:"device_id"`
}

// SourceNdi receives an NDI stream. An empty name picks the first source
// discovered.
type SourceNdi struct {
	sourcePart

	SourceName string `json:"source_name,omitempty"`
}

func (SourceMediaFile) Kind() string { return "MediaFile" }
func (SourceShader) Kind() string    { return "Shader" }
func (SourceLiveInput) Kind() string { return "LiveInput" }
func (SourceNdi) Kind() string       { return "NdiInput" }

// MaskFile masks with a grayscale image.
type MaskFile struct {
	maskPart

	Path string `json:"path"`
}

// MaskShape masks with a procedural shape.
type MaskShape struct {
	maskPart

	Shape ShapeKind `json:"shape"`
}

// MaskGradient masks with a linear gradient.
type MaskGradient struct {
	maskPart

	Angle    float32 `json:"angle"`
	Softness float32 `json:"softness"`
}

func (MaskFile) Kind() string     { return "File" }
func (MaskShape) Kind() string    { return "Shape" }
func (MaskGradient) Kind() string { return "Gradient" }

// ModulizerEffect applies a visual effect.
type ModulizerEffect struct {
	modulizerPart

	Effect EffectType         `json:"effect_type"`
	Params map[string]float32 `json:"params"`
}

// NewEffect returns an effect modulizer with the effect's default params.
func NewEffect(e EffectType) ModulizerEffect {
	return ModulizerEffect{Effect: e, Params: e.DefaultParams()}
}

// UnmarshalJSON decodes an effect. When params are absent they are reset
// to the defaults of the decoded effect, unless the effect is absent too.
func (m *ModulizerEffect) UnmarshalJSON(data []byte) error {
	var doc struct {
		Effect *EffectType        `json:"effect_type"`
		Params map[string]float32 `json:"params"`
	}

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return fmt.Errorf("graph: effect: %w", err)
	}

	switch {
	case doc.Params != nil:
		m.Params = doc.Params
	case doc.Effect != nil && *doc.Effect != m.Effect:
		m.Params = doc.Effect.DefaultParams()
	}

	if doc.Effect != nil {
		m.Effect = *doc.Effect
	}

	return nil
}

// ModulizerBlend changes the blend mode of the media passing through.
type ModulizerBlend struct {
	modulizerPart

	Mode BlendMode `json:"mode"`
}

// ModulizerAudioReactive modulates the media from a named audio source.
type ModulizerAudioReactive struct {
	modulizerPart

	Source string `json:"source"`
}

func (ModulizerEffect) Kind() string        { return "Effect" }
func (ModulizerBlend) Kind() string         { return "BlendMode" }
func (ModulizerAudioReactive) Kind() string { return "AudioReactive" }

// MeshQuad is a four-corner warp quad in normalized coordinates.
type MeshQuad struct {
	meshPart

	TopLeft     Vec2 `json:"tl"`
	TopRight    Vec2 `json:"tr"`
	BottomRight Vec2 `json:"br"`
	BottomLeft  Vec2 `json:"bl"`
}

// NewQuad returns the unit quad.
func NewQuad() MeshQuad {
	return MeshQuad{
		TopLeft:     Vec2{0, 0},
		TopRight:    Vec2{1, 0},
		BottomRight: Vec2{1, 1},
		BottomLeft:  Vec2{0, 1},
	}
}

// MeshGrid is a regular warp grid.
type MeshGrid struct {
	meshPart

	Rows uint32 `json:"rows"`
	Cols uint32 `json:"cols"`
}

// MeshTriangle is a single triangle.
type MeshTriangle struct {
	meshPart
}

// MeshCircle is a circle or arc approximated by segments.
type MeshCircle struct {
	meshPart

	Segments uint32  `json:"segments"`
	ArcAngle float32 `json:"arc_angle"`
}

// MeshPolygon is an arbitrary polygon.
type MeshPolygon struct {
	meshPart

	Vertices []Vec2 `json:"vertices"`
}

func (MeshQuad) Kind() string     { return "Quad" }
func (MeshGrid) Kind() string     { return "Grid" }
func (MeshTriangle) Kind() string { return "TriMesh" }
func (MeshCircle) Kind() string   { return "Circle" }
func (MeshPolygon) Kind() string  { return "Polygon" }

// LayerSingle is one compositing layer.
type LayerSingle struct {
	layerPart

	ID      uint64     `json:"id"`
	Name    string     `json:"name"`
	Opacity float32    `json:"opacity"`
	Blend   *BlendMode `json:"blend_mode,omitempty"`
}

// LayerGroup groups several layers.
type LayerGroup struct {
	layerPart

	Name    string     `json:"name"`
	Opacity float32    `json:"opacity"`
	Blend   *BlendMode `json:"blend_mode,omitempty"`
}

// LayerAll addresses every layer of the project.
type LayerAll struct {
	layerPart

	Opacity float32    `json:"opacity"`
	Blend   *BlendMode `json:"blend_mode,omitempty"`
}

func (LayerSingle) Kind() string { return "Single" }
func (LayerGroup) Kind() string  { return "Group" }
func (LayerAll) Kind() string    { return "All" }

// OutputProjector drives a projector window.
type OutputProjector struct {
	outputPart

	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	HideCursor    bool    `json:"hide_cursor"`
	TargetScreen  uint8   `json:"target_screen"`
	ShowInPreview bool    `json:"show_in_preview_panel"`
	Width         uint32  `json:"output_width"`
	Height        uint32  `json:"output_height"`
	FPS           float32 `json:"output_fps"`
}

// NewProjector returns a projector output with the given id and a
// matching "Output N" name.
func NewProjector(id uint64) OutputProjector {
	return OutputProjector{
		ID:            id,
		Name:          "Output " + strconv.FormatUint(id, 10),
		HideCursor:    true,
		ShowInPreview: true,
		FPS:           60,
	}
}

// OutputNdi publishes the layer as an NDI stream.
type OutputNdi struct {
	outputPart

	Name string `json:"name"`
}

func (OutputProjector) Kind() string { return "Projector" }
func (OutputNdi) Kind() string       { return "NdiOutput" }
