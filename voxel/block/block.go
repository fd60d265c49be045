package block

import "fmt"

// ID identifies a block type. Zero is always empty space.
type ID uint8

const (
	Empty   ID = 0
	Unknown ID = 0xff

	MaxBlocks = 256
)

// Default palette used by the reference generator and the demo.
const (
	Bedrock ID = iota + 1
	Stone
	Dirt
	Grass
	Sand
	Snow
	Water
	Trunk
	Leaves
)

type Props struct {
	Name   string
	Solid  bool
	Opaque bool
}

// Registry answers per-block material questions for the chunk and frontier meshers.
type Registry struct {
	props      [MaxBlocks]Props
	registered [MaxBlocks]bool
}

func NewRegistry() *Registry {
	r := &Registry{}
	r.props[Empty] = Props{Name: "empty"}
	r.registered[Empty] = true
	return r
}

// Register installs the properties of id. Registering the same id twice,
// or touching Empty/Unknown, panics.
func (r *Registry) Register(id ID, p Props) {
	if id == Empty || id == Unknown {
		panic(fmt.Sprintf("block %d is reserved", id))
	}
	if r.registered[id] {
		panic(fmt.Sprintf("block %d (%s) is already registered", id, r.props[id].Name))
	}
	r.props[id] = p
	r.registered[id] = true
}

func (r *Registry) Registered(id ID) bool { return r.registered[id] }
func (r *Registry) Solid(id ID) bool      { return r.props[id].Solid }
func (r *Registry) Opaque(id ID) bool     { return r.props[id].Opaque }
func (r *Registry) Name(id ID) string     { return r.props[id].Name }

// Liquid reports whether id is a registered, non-empty block that is not solid.
func (r *Registry) Liquid(id ID) bool {
	return id != Empty && id != Unknown && r.registered[id] && !r.props[id].Solid
}

// DefaultRegistry returns a registry with the default palette installed.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Bedrock, Props{Name: "bedrock", Solid: true, Opaque: true})
	r.Register(Stone, Props{Name: "stone", Solid: true, Opaque: true})
	r.Register(Dirt, Props{Name: "dirt", Solid: true, Opaque: true})
	r.Register(Grass, Props{Name: "grass", Solid: true, Opaque: true})
	r.Register(Sand, Props{Name: "sand", Solid: true, Opaque: true})
	r.Register(Snow, Props{Name: "snow", Solid: true, Opaque: true})
	r.Register(Water, Props{Name: "water"})
	r.Register(Trunk, Props{Name: "trunk", Solid: true, Opaque: true})
	r.Register(Leaves, Props{Name: "leaves", Solid: true})
	return r
}
