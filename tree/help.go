package tree

import (
	"strings"
)

const helpIndent = "  "

// Help renders el and everything below it as an indented listing. Each line
// shows the node name, its description and the matches feeders hold on it.
// Groups are listed after the elements of the config declaring them.
func Help(el Element) string {
	var b strings.Builder
	writeHelp(&b, el, 0)
	return b.String()
}

func writeHelp(b *strings.Builder, el Element, depth int) {
	writeNodeLine(b, el, depth)

	cfg, ok := el.(*Config)
	if !ok {
		return
	}
	for _, child := range cfg.Elements() {
		writeHelp(b, child, depth+1)
	}
	for _, g := range cfg.Groups() {
		b.WriteString(strings.Repeat(helpIndent, depth+1))
		b.WriteString("group ")
		b.WriteString(g.Name())
		if d := g.Description(); d != "" {
			b.WriteString(": ")
			b.WriteString(d)
		}
		b.WriteString("\n")
		for _, m := range g.Members() {
			b.WriteString(strings.Repeat(helpIndent, depth+2))
			b.WriteString(m.Name())
			b.WriteString("\n")
		}
	}
}

func writeNodeLine(b *strings.Builder, n Node, depth int) {
	b.WriteString(strings.Repeat(helpIndent, depth))
	b.WriteString(n.Name())
	if d := n.Description(); d != "" {
		b.WriteString(": ")
		b.WriteString(d)
	}
	for _, fm := range n.AllFeederMatches() {
		b.WriteString(" ")
		b.WriteString(fm.String())
	}
	b.WriteString("\n")
}
