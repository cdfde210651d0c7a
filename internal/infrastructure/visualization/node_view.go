package visualization

import "github.com/plexilrun/plexil/internal/domain"

// DomainNode adapts a *domain.Node into a NodeView for rendering.
type DomainNode struct {
	n *domain.Node
}

func Wrap(n *domain.Node) DomainNode { return DomainNode{n: n} }

func (d DomainNode) ID() string        { return d.n.ID() }
func (d DomainNode) TypeName() string  { return d.n.Type().String() }
func (d DomainNode) StateName() string { return d.n.State().String() }

func (d DomainNode) Children() []NodeView {
	kids := d.n.Children()
	out := make([]NodeView, len(kids))
	for i, k := range kids {
		out[i] = Wrap(k)
	}
	return out
}

var _ NodeView = DomainNode{}
