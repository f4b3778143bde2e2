package mcpserver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
)

// Describe renders a module as plain text.
func Describe(m *graph.Module) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Module %d %q: %d parts, %d connections\n",
		m.ID, m.Name, len(m.Parts()), len(m.Connections()))

	for _, p := range m.Parts() {
		fmt.Fprintf(&sb, "\nPart %d  %s/%s  at (%g, %g)", p.ID, p.Category(), p.Type.Kind(), p.Position.X, p.Position.Y)

		if p.Link.Mode != graph.LinkOff {
			fmt.Fprintf(&sb, "  link=%s", p.Link.Mode)

			if p.Link.Mode == graph.LinkSlave {
				fmt.Fprintf(&sb, "/%s", p.Link.Behavior)
			}
		}

		sb.WriteString("\n")
		writeSockets(&sb, p)

		sockets := make([]int, 0, len(p.TriggerTargets))
		for s := range p.TriggerTargets {
			sockets = append(sockets, s)
		}

		slices.Sort(sockets)

		for _, s := range sockets {
			cfg := p.TriggerTargets[s]
			fmt.Fprintf(&sb, "  map  in[%d] -> %s %s %g..%g\n", s, cfg.Target, cfg.Mode.Kind, cfg.Min, cfg.Max)
		}
	}

	if len(m.Connections()) > 0 {
		sb.WriteString("\nConnections\n")

		for _, c := range m.Connections() {
			fmt.Fprintf(&sb, "  %s\n", formatConnection(m, c))
		}
	}

	if dangling := m.DanglingConnections(); len(dangling) > 0 {
		fmt.Fprintf(&sb, "\n%d dangling connection(s); run update_sockets.\n", len(dangling))
	}

	return sb.String()
}

func writeSockets(sb *strings.Builder, p *graph.Part) {
	for i, s := range p.Inputs() {
		fmt.Fprintf(sb, "  in[%d]  %s (%s)\n", i, s.Name, s.Type)
	}

	for i, s := range p.Outputs() {
		fmt.Fprintf(sb, "  out[%d] %s (%s)\n", i, s.Name, s.Type)
	}
}

func formatConnection(m *graph.Module, c graph.Connection) string {
	return fmt.Sprintf("%d.%s -> %d.%s",
		c.FromPart, socketLabel(m, c.FromPart, c.FromSocket, false),
		c.ToPart, socketLabel(m, c.ToPart, c.ToSocket, true))
}

func socketLabel(m *graph.Module, id graph.PartID, idx int, input bool) string {
	p, ok := m.Part(id)
	if !ok {
		return fmt.Sprintf("[%d]?", idx)
	}

	sockets := p.Outputs()
	if input {
		sockets = p.Inputs()
	}

	if idx < 0 || idx >= len(sockets) {
		return fmt.Sprintf("[%d]?", idx)
	}

	return fmt.Sprintf("[%d] %q", idx, sockets[idx].Name)
}
