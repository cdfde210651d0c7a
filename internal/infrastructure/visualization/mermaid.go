package visualization

import (
	"fmt"
	"strings"
)

// MermaidRenderer renders a plan's node tree as a Mermaid flowchart: one
// shape per node type, a containment edge from every container to each
// of its children, and a class-based color per execution state.
type MermaidRenderer struct{}

func NewMermaidRenderer() *MermaidRenderer { return &MermaidRenderer{} }

func (r *MermaidRenderer) Format() string { return "mermaid" }

func (r *MermaidRenderer) Render(root NodeView, opts *RenderOptions) (string, error) {
	if root == nil {
		return "", fmt.Errorf("node tree is nil")
	}
	if opts == nil {
		opts = DefaultRenderOptions()
	}

	var sb strings.Builder
	sb.WriteString("flowchart ")
	sb.WriteString(opts.Direction)
	sb.WriteString("\n")

	byState := make(map[string][]string)
	r.renderNode(&sb, root, opts, byState)

	sb.WriteString(r.renderStyles())
	for state, ids := range byState {
		sb.WriteString("    class ")
		sb.WriteString(strings.Join(ids, ","))
		sb.WriteString(" ")
		sb.WriteString(className(state))
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func (r *MermaidRenderer) renderNode(sb *strings.Builder, n NodeView, opts *RenderOptions, byState map[string][]string) {
	label := n.ID() + ": " + n.TypeName()
	if opts.ShowState {
		label += "<br/>" + n.StateName()
	}
	label = strings.ReplaceAll(label, `"`, "&quot;")

	sb.WriteString("    ")
	sb.WriteString(shapeFor(n, label))
	sb.WriteString("\n")

	state := n.StateName()
	byState[state] = append(byState[state], n.ID())

	for _, c := range n.Children() {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", n.ID(), c.ID()))
	}
	for _, c := range n.Children() {
		r.renderNode(sb, c, opts, byState)
	}
}

func shapeFor(n NodeView, label string) string {
	switch n.TypeName() {
	case "List", "LibraryCall":
		return fmt.Sprintf(`%s["%s"]`, n.ID(), label)
	case "Command":
		return fmt.Sprintf(`%s(["%s"])`, n.ID(), label)
	case "Assignment":
		return fmt.Sprintf(`%s[/"%s"/]`, n.ID(), label)
	case "Update":
		return fmt.Sprintf(`%s{{"%s"}}`, n.ID(), label)
	case "Empty":
		return fmt.Sprintf(`%s("%s")`, n.ID(), label)
	default:
		return fmt.Sprintf(`%s["%s"]`, n.ID(), label)
	}
}

func className(state string) string {
	return "state" + strings.ReplaceAll(state, "_", "")
}

func (r *MermaidRenderer) renderStyles() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("    classDef stateINACTIVE fill:#EEEEEE,stroke:#999999,color:#000\n")
	sb.WriteString("    classDef stateWAITING fill:#FFF6CC,stroke:#D6B656,color:#000\n")
	sb.WriteString("    classDef stateEXECUTING fill:#D0E6FF,stroke:#1A73E8,color:#000\n")
	sb.WriteString("    classDef stateFINISHING fill:#FFE5C2,stroke:#F7931A,color:#000\n")
	sb.WriteString("    classDef stateFAILING fill:#FFD9E6,stroke:#EA4C89,color:#000\n")
	sb.WriteString("    classDef stateITERATIONENDED fill:#E8D9FF,stroke:#8E57FF,color:#000\n")
	sb.WriteString("    classDef stateFINISHED fill:#DFF7E3,stroke:#34A853,color:#000\n")
	return sb.String()
}

var _ Renderer = (*MermaidRenderer)(nil)
