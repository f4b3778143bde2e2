package graph

import (
	"errors"
	"fmt"
)

// Factory builds the default configuration of one part kind. It must
// return a fresh value on every call.
type Factory func() PartType

type kindKey struct {
	category Category
	kind     string
}

// Registry maps (category, kind) names to factories. The codec decodes
// part kinds through it and AddDefaultPart picks category defaults from it.
type Registry struct {
	factories map[kindKey]Factory
	kinds     map[Category][]string
	defaults  map[Category]Factory
}

var errDuplicateKind = errors.New("duplicate part kind")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[kindKey]Factory),
		kinds:     make(map[Category][]string),
		defaults:  make(map[Category]Factory),
	}
}

// Register adds a factory for the kind. The first kind registered for a
// category becomes its default.
func (r *Registry) Register(c Category, kind string, factory Factory) error {
	if !c.Valid() {
		return fmt.Errorf("%w: category %d", ErrUnknownName, int(c))
	}

	if kind == "" {
		return errors.New("empty part kind")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	key := kindKey{c, kind}
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("%w: %s/%s", errDuplicateKind, c, kind)
	}

	r.factories[key] = factory
	r.kinds[c] = append(r.kinds[c], kind)

	if _, ok := r.defaults[c]; !ok {
		r.defaults[c] = factory
	}

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(c Category, kind string, factory Factory) {
	err := r.Register(c, kind, factory)
	if err != nil {
		panic("graph registry: " + err.Error())
	}
}

// Lookup returns the factory for the kind, or nil.
func (r *Registry) Lookup(c Category, kind string) Factory {
	return r.factories[kindKey{c, kind}]
}

// Kinds lists the registered kinds of a category in registration order.
func (r *Registry) Kinds(c Category) []string {
	return append([]string(nil), r.kinds[c]...)
}

// Default returns the default configuration of a category.
func (r *Registry) Default(c Category) (PartType, bool) {
	factory, ok := r.defaults[c]
	if !ok {
		return nil, false
	}

	return factory(), true
}

// New returns the default configuration of the named kind.
func (r *Registry) New(c Category, kind string) (PartType, error) {
	factory := r.Lookup(c, kind)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownKind, c, kind)
	}

	return factory(), nil
}

var builtins = newBuiltinRegistry()

// Builtins returns the registry of every built-in part kind.
func Builtins() *Registry { return builtins }

func newBuiltinRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(CategoryTrigger, "Beat", func() PartType { return TriggerBeat{} })
	r.MustRegister(CategoryTrigger, "AudioFFT", func() PartType {
		return TriggerAudioFFT{Band: BandBass, Threshold: 0.5, Outputs: DefaultAudioOutputs()}
	})
	r.MustRegister(CategoryTrigger, "Random", func() PartType {
		return TriggerRandom{MinIntervalMs: 500, MaxIntervalMs: 2000, Probability: 0.1}
	})
	r.MustRegister(CategoryTrigger, "Fixed", func() PartType { return TriggerFixed{IntervalMs: 1000} })
	r.MustRegister(CategoryTrigger, "Midi", func() PartType { return TriggerMidi{Channel: 1, Note: 60} })
	r.MustRegister(CategoryTrigger, "Osc", func() PartType { return TriggerOsc{Address: "/trigger"} })
	r.MustRegister(CategoryTrigger, "Shortcut", func() PartType { return TriggerShortcut{KeyCode: "Space"} })

	r.MustRegister(CategorySource, "MediaFile", func() PartType { return NewMediaFile("") })
	r.MustRegister(CategorySource, "Shader", func() PartType { return SourceShader{Name: "Default"} })
	r.MustRegister(CategorySource, "LiveInput", func() PartType { return SourceLiveInput{} })
	r.MustRegister(CategorySource, "NdiInput", func() PartType { return SourceNdi{} })

	r.MustRegister(CategoryMask, "Shape", func() PartType { return MaskShape{Shape: ShapeRectangle} })
	r.MustRegister(CategoryMask, "File", func() PartType { return MaskFile{} })
	r.MustRegister(CategoryMask, "Gradient", func() PartType { return MaskGradient{Softness: 0.5} })

	r.MustRegister(CategoryModulizer, "Effect", func() PartType { return NewEffect(EffectBlur) })
	r.MustRegister(CategoryModulizer, "BlendMode", func() PartType { return ModulizerBlend{} })
	r.MustRegister(CategoryModulizer, "AudioReactive", func() PartType {
		return ModulizerAudioReactive{Source: "SubBass"}
	})

	r.MustRegister(CategoryMesh, "Grid", func() PartType { return MeshGrid{Rows: 10, Cols: 10} })
	r.MustRegister(CategoryMesh, "Quad", func() PartType { return NewQuad() })
	r.MustRegister(CategoryMesh, "TriMesh", func() PartType { return MeshTriangle{} })
	r.MustRegister(CategoryMesh, "Circle", func() PartType { return MeshCircle{Segments: 32, ArcAngle: 360} })
	r.MustRegister(CategoryMesh, "Polygon", func() PartType { return MeshPolygon{} })

	r.MustRegister(CategoryLayer, "Single", func() PartType {
		return LayerSingle{ID: 0, Name: "Layer 1", Opacity: 1}
	})
	r.MustRegister(CategoryLayer, "Group", func() PartType { return LayerGroup{Name: "Group 1", Opacity: 1} })
	r.MustRegister(CategoryLayer, "All", func() PartType { return LayerAll{Opacity: 1} })

	r.MustRegister(CategoryOutput, "Projector", func() PartType { return NewProjector(1) })
	r.MustRegister(CategoryOutput, "NdiOutput", func() PartType { return OutputNdi{Name: "MapFlow"} })

	return r
}
