package graph

// LinkMode is the role of a part in a master/slave link.
type LinkMode int

const (
	LinkOff LinkMode = iota
	LinkMaster
	LinkSlave
)

var linkModeNames = enumNames{"Off", "Master", "Slave"}

func (m LinkMode) String() string { return linkModeNames.format(int(m), "LinkMode") }

// MarshalText implements encoding.TextMarshaler.
func (m LinkMode) MarshalText() ([]byte, error) { return linkModeNames.marshal(int(m), "link mode") }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *LinkMode) UnmarshalText(text []byte) error {
	v, err := linkModeNames.parse(string(text), "link mode")
	if err != nil {
		return err
	}

	*m = LinkMode(v)

	return nil
}

// ParseLinkMode parses a link mode name, ignoring case.
func ParseLinkMode(s string) (LinkMode, error) {
	var m LinkMode

	err := m.UnmarshalText([]byte(s))

	return m, err
}

// LinkBehavior decides how a slave interprets its master's state.
type LinkBehavior int

const (
	SameAsMaster LinkBehavior = iota
	Inverted
)

var linkBehaviorNames = enumNames{"SameAsMaster", "Inverted"}

func (b LinkBehavior) String() string { return linkBehaviorNames.format(int(b), "LinkBehavior") }

// MarshalText implements encoding.TextMarshaler.
func (b LinkBehavior) MarshalText() ([]byte, error) {
	return linkBehaviorNames.marshal(int(b), "link behavior")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *LinkBehavior) UnmarshalText(text []byte) error {
	v, err := linkBehaviorNames.parse(string(text), "link behavior")
	if err != nil {
		return err
	}

	*b = LinkBehavior(v)

	return nil
}

// ParseLinkBehavior parses a link behavior name, ignoring case.
func ParseLinkBehavior(s string) (LinkBehavior, error) {
	var b LinkBehavior

	err := b.UnmarshalText([]byte(s))

	return b, err
}

// LinkData is the link state of a part. Mode is a single value so a part
// can never be master and slave at once. Behavior only matters for slaves.
type LinkData struct {
	Mode                LinkMode     `json:"mode"`
	Behavior            LinkBehavior `json:"behavior"`
	TriggerInputEnabled bool         `json:"trigger_input_enabled"`
}
