package markup

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	nethtml "golang.org/x/net/html"
)

// blockTags start a block of their own; everything else flows inline.
var blockTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "div": true, "blockquote": true,
	"ul": true, "ol": true, "li": true,
	"table": true, "pre": true, "hr": true,
}

// section collects blocks, separated by a blank line unless tight.
type section struct {
	lines []string
	tight bool
}

func (s *section) add(block []string) {
	if len(block) == 0 {
		return
	}
	if !s.tight && len(s.lines) > 0 {
		s.lines = append(s.lines, "")
	}
	s.lines = append(s.lines, block...)
}

// blocks renders sibling nodes. Inline runs between blocks become
// paragraphs.
func (r renderer) blocks(nodes []*nethtml.Node, depth int) []string {
	out := section{tight: r.tight}
	var run []*nethtml.Node
	flush := func() {
		if text := normalize(r.inline(run)); text != "" {
			out.add(wrapText(text, r.width))
		}
		run = nil
	}
	for _, n := range nodes {
		if n.Type == nethtml.ElementNode && blockTags[n.Data] {
			flush()
			out.add(r.block(n, depth))
			continue
		}
		run = append(run, n)
	}
	flush()
	return trimBlank(out.lines)
}

func (r renderer) block(n *nethtml.Node, depth int) []string {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return r.heading(n, int(n.Data[1]-'0'))
	case "blockquote":
		return r.quote(n, depth)
	case "ul", "ol":
		return r.list(n, depth+1)
	case "li":
		return r.item(n, bullet(depth+1), depth+1)
	case "pre":
		return r.code(n)
	case "table":
		return r.table(n)
	case "hr":
		return []string{r.paint(ruleStyle, strings.Repeat("─", min(max(r.width, 3), 24)))}
	default:
		return r.blocks(children(n), depth)
	}
}

func (r renderer) heading(n *nethtml.Node, level int) []string {
	text := normalize(r.inline(children(n)))
	if text == "" {
		return nil
	}
	bar := r.paint(headingBars[(level-1)%len(headingBars)], "▌") + " "
	return r.hanging(bar, strings.ReplaceAll(text, "\n", " "), &headingStyle)
}

// quote prefixes every line with a bar. Reddit replies nest quotes, and
// each level adds one.
func (r renderer) quote(n *nethtml.Node, depth int) []string {
	inner := r.narrow(2).blocks(children(n), depth)
	if len(inner) == 0 {
		return nil
	}
	bar := r.paint(quoteBar, "│")
	out := make([]string, len(inner))
	for i, line := range inner {
		if line == "" {
			out[i] = bar
			continue
		}
		out[i] = bar + " " + line
	}
	return out
}

func (r renderer) list(n *nethtml.Node, depth int) []string {
	ordered := n.Data == "ol"
	num := 1
	if v, err := strconv.Atoi(attr(n, "start")); err == nil {
		num = v
	}
	var out []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != nethtml.ElementNode || c.Data != "li" {
			continue
		}
		marker := bullet(depth)
		if ordered {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		out = append(out, r.item(c, marker, depth)...)
	}
	return out
}

func (r renderer) item(li *nethtml.Node, marker string, depth int) []string {
	pw := ansi.StringWidth(marker)
	inner := r.narrow(pw)
	inner.tight = true
	body := inner.blocks(children(li), depth)
	if len(body) == 0 {
		return nil
	}
	pad := strings.Repeat(" ", pw)
	out := make([]string, len(body))
	for i, line := range body {
		switch {
		case i == 0:
			out[i] = r.paint(markerStyle, marker) + line
		case line == "":
			out[i] = ""
		default:
			out[i] = pad + line
		}
	}
	return out
}

func bullet(depth int) string {
	switch depth {
	case 1:
		return "• "
	case 2:
		return "◦ "
	default:
		return "▪ "
	}
}

// code keeps preformatted text as-is, indented, cutting lines that do not
// fit.
func (r renderer) code(n *nethtml.Node) []string {
	text := strings.ReplaceAll(rawText(n), "\r\n", "\n")
	text = strings.ReplaceAll(strings.TrimRight(text, "\n"), "\t", "    ")
	inner := r.narrow(4)
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " ")
		if line == "" {
			out = append(out, "")
			continue
		}
		out = append(out, "    "+r.paint(codeStyle, inner.fit(line)))
	}
	return trimBlank(out)
}

// trimBlank drops leading and trailing blank lines and folds blank runs.
func trimBlank(lines []string) []string {
	out := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
