package graph

// SocketType is the kind of data carried through a socket.
type SocketType int

const (
	SocketTrigger SocketType = iota
	SocketMedia
	SocketEffect
	SocketLayer
	SocketOutput
	SocketLink
)

var socketTypeNames = enumNames{"Trigger", "Media", "Effect", "Layer", "Output", "Link"}

func (t SocketType) String() string { return socketTypeNames.format(int(t), "SocketType") }

// MarshalText implements encoding.TextMarshaler.
func (t SocketType) MarshalText() ([]byte, error) {
	return socketTypeNames.marshal(int(t), "socket type")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SocketType) UnmarshalText(text []byte) error {
	v, err := socketTypeNames.parse(string(text), "socket type")
	if err != nil {
		return err
	}

	*t = SocketType(v)

	return nil
}

// Socket is a named, typed port on a part. Sockets are derived from the
// part configuration and never edited directly.
type Socket struct {
	Name string     `json:"name"`
	Type SocketType `json:"socket_type"`
}

// Socket names shared by several categories.
const (
	SocketTriggerOut   = "Trigger Out"
	SocketTriggerIn    = "Trigger In"
	SocketMediaIn      = "Media In"
	SocketMediaOut     = "Media Out"
	SocketMaskIn       = "Mask In"
	SocketLayerInput   = "Input"
	SocketLayerTrigger = "Trigger"
	SocketLayerOutput  = "Output"
	SocketVertexIn     = "Vertex In"
	SocketControlIn    = "Control In"
	SocketGeometryOut  = "Geometry Out"
	SocketLayerIn      = "Layer In"
	SocketLinkOut      = "Link Out"
	SocketLinkIn       = "Link In"
	SocketVisibilityIn = "Trigger In (Vis)"
)

// Connection is a directed edge from an output socket of one part to an
// input socket of another (or the same) part.
type Connection struct {
	FromPart   PartID `json:"from_part"`
	FromSocket int    `json:"from_socket"`
	ToPart     PartID `json:"to_part"`
	ToSocket   int    `json:"to_socket"`
}

// Touches reports whether the connection starts or ends at id.
func (c Connection) Touches(id PartID) bool {
	return c.FromPart == id || c.ToPart == id
}
