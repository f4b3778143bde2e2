package graph

// Category is the top-level classification of a part.
type Category int

const (
	CategoryTrigger Category = iota
	CategorySource
	CategoryMask
	CategoryModulizer
	CategoryMesh
	CategoryLayer
	CategoryOutput
)

var categoryNames = enumNames{"Trigger", "Source", "Mask", "Modulizer", "Mesh", "Layer", "Output"}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryTrigger, CategorySource, CategoryMask, CategoryModulizer,
		CategoryMesh, CategoryLayer, CategoryOutput,
	}
}

func (c Category) String() string { return categoryNames.format(int(c), "Category") }

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool { return c >= CategoryTrigger && c <= CategoryOutput }

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) { return categoryNames.marshal(int(c), "category") }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	v, err := categoryNames.parse(string(text), "category")
	if err != nil {
		return err
	}

	*c = Category(v)

	return nil
}

// ParseCategory parses a category name, ignoring case.
func ParseCategory(s string) (Category, error) {
	var c Category

	err := c.UnmarshalText([]byte(s))

	return c, err
}

// PartType is the configuration of a part: one category plus a
// category-specific kind. The set of implementations is closed; each
// category has its own sealed sub-interface (TriggerKind, SourceKind, ...).
type PartType interface {
	Category() Category
	// Kind is the registry name of the variant within its category.
	Kind() string
}

// TriggerKind is implemented by trigger variants.
type TriggerKind interface {
	PartType
	isTrigger()
}

// SourceKind is implemented by source variants.
type SourceKind interface {
	PartType
	isSource()
}

// MaskKind is implemented by mask variants.
type MaskKind interface {
	PartType
	isMask()
}

// ModulizerKind is implemented by modulizer variants.
type ModulizerKind interface {
	PartType
	isModulizer()
}

// MeshKind is implemented by mesh variants.
type MeshKind interface {
	PartType
	isMesh()
}

// LayerKind is implemented by layer variants.
type LayerKind interface {
	PartType
	isLayer()
}

// OutputKind is implemented by output variants.
type OutputKind interface {
	PartType
	isOutput()
}

// Category markers embedded by the variants.
type (
	triggerPart   struct{}
	sourcePart    struct{}
	maskPart      struct{}
	modulizerPart struct{}
	meshPart      struct{}
	layerPart     struct{}
	outputPart    struct{}
)

func (triggerPart) Category() Category   { return CategoryTrigger }
func (triggerPart) isTrigger()           {}
func (sourcePart) Category() Category    { return CategorySource }
func (sourcePart) isSource()             {}
func (maskPart) Category() Category      { return CategoryMask }
func (maskPart) isMask()                 {}
func (modulizerPart) Category() Category { return CategoryModulizer }
func (modulizerPart) isModulizer()       {}
func (meshPart) Category() Category      { return CategoryMesh }
func (meshPart) isMesh()                 {}
func (layerPart) Category() Category     { return CategoryLayer }
func (layerPart) isLayer()               {}
func (outputPart) Category() Category    { return CategoryOutput }
func (outputPart) isOutput()             {}

// AcceptsMappings reports whether parts of category c may carry trigger
// target mappings.
func (c Category) AcceptsMappings() bool {
	switch c {
	case CategoryMask, CategoryModulizer, CategoryLayer, CategoryMesh:
		return true
	default:
		return false
	}
}
