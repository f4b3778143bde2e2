package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
)

func newInspectCmd(a *app) *cobra.Command {
	var update bool

	cmd := &cobra.Command{
		Use:   "inspect <file.json|module-id>",
		Short: "Render a module's parts, sockets, mappings and connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModule(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if update {
				before := len(m.Connections())
				m.UpdateAllSockets()
				a.logger.Info("sockets updated", "pruned", before-len(m.Connections()))
			}

			renderModule(cmd.OutOrStdout(), m)

			return nil
		},
	}

	cmd.Flags().BoolVar(&update, "update-sockets", false, "regenerate sockets and prune dangling connections first")

	return cmd
}

func renderModule(w io.Writer, m *graph.Module) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Module %d · %s", m.ID, m.Name)))

	for _, p := range m.Parts() {
		fmt.Fprintln(w, partStyle.Render(renderPart(p)))
	}

	if len(m.Connections()) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Connections"))

		dangling := m.DanglingConnections()

		for _, c := range m.Connections() {
			line := fmt.Sprintf("  %d[%d] → %d[%d]", c.FromPart, c.FromSocket, c.ToPart, c.ToSocket)
			if slices.Contains(dangling, c) {
				line = warningStyle.Render(line + "  dangling")
			}

			fmt.Fprintln(w, line)
		}
	}

	order, err := m.Order()
	if err != nil {
		fmt.Fprintln(w, warningStyle.Render("Order: "+err.Error()))

		return
	}

	ids := make([]string, len(order))
	for i, id := range order {
		ids[i] = fmt.Sprint(id)
	}

	fmt.Fprintln(w, mutedStyle.Render("Order: "+strings.Join(ids, " → ")))
}

func renderPart(p *graph.Part) string {
	var sb strings.Builder

	sb.WriteString(categoryStyle(p.Category().String()).Render(fmt.Sprintf("#%d %s/%s", p.ID, p.Category(), p.Type.Kind())))
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  (%g, %g)", p.Position.X, p.Position.Y)))

	switch p.Link.Mode {
	case graph.LinkMaster:
		sb.WriteString(linkStyle.Render("  master"))
	case graph.LinkSlave:
		sb.WriteString(linkStyle.Render("  slave/" + p.Link.Behavior.String()))
	}

	var inputs, outputs []string

	for i, s := range p.Inputs() {
		line := fmt.Sprintf("▸ %d %s", i, s.Name)
		if cfg, ok := p.Mapping(i); ok && !cfg.Target.IsNone() {
			line += mutedStyle.Render(fmt.Sprintf(" ⇒ %s %s", cfg.Target, cfg.Mode.Kind))
		}

		inputs = append(inputs, line)
	}

	for i, s := range p.Outputs() {
		outputs = append(outputs, fmt.Sprintf("%s %d ▸", s.Name, i))
	}

	left := lipgloss.NewStyle().Width(34).Render(strings.Join(inputs, "\n"))
	right := lipgloss.NewStyle().Align(lipgloss.Right).Render(strings.Join(outputs, "\n"))

	sb.WriteString("\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))

	return sb.String()
}
