// Package visualization renders a plan's node tree as a diagram.
package visualization

// Renderer converts a node tree into a diagram in some target format.
type Renderer interface {
	// Render produces the diagram text for root and every descendant.
	Render(root NodeView, opts *RenderOptions) (string, error)

	// Format returns the format identifier (e.g. "mermaid").
	Format() string
}

// NodeView is the read-only slice of a plan node a renderer needs; it
// lets this package stay free of a direct dependency on the domain
// package's mutable node type.
type NodeView interface {
	ID() string
	TypeName() string
	StateName() string
	Children() []NodeView
}

// RenderOptions configures how a plan is rendered.
type RenderOptions struct {
	// ShowState labels every node with its current execution state.
	ShowState bool

	// Direction sets the diagram flow direction (Mermaid only).
	// Valid values: "TB", "LR", "RL", "BT".
	Direction string
}

func DefaultRenderOptions() *RenderOptions {
	return &RenderOptions{
		ShowState: true,
		Direction: "TB",
	}
}
