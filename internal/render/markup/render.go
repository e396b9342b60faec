// Package markup turns the HTML Reddit sends in body_html and
// selftext_html into terminal lines and plain text.
package markup

import (
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const redditOrigin = "https://www.reddit.com"

var reHTTPURL = regexp.MustCompile(`https?://[^\s)]+`)

var bodyContext = &nethtml.Node{Type: nethtml.ElementNode, Data: "body", DataAtom: atom.Body}

type Options struct {
	// Plain renders without any styling.
	Plain bool
	// KeepNoise keeps filler paragraphs and bot signatures.
	KeepNoise bool
}

// Lines renders fragment wrapped to width. When fragment is empty, or
// renders to nothing, the markdown source in fallback is wrapped as-is.
func Lines(fragment, fallback string, width int) []string {
	return Render(fragment, fallback, width, Options{})
}

// Render is Lines with options. A width below 1 disables wrapping.
func Render(fragment, fallback string, width int, opts Options) []string {
	if lines := renderFragment(fragment, width, opts); len(lines) > 0 {
		return lines
	}
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		return nil
	}
	return wrapText(fallback, width)
}

// Text returns the unwrapped, unstyled text of fragment, or fallback when
// fragment renders to nothing. Blocks are separated by blank lines.
func Text(fragment, fallback string) string {
	lines := renderFragment(fragment, 0, Options{Plain: true})
	if len(lines) == 0 {
		return strings.TrimSpace(fallback)
	}
	return strings.Join(lines, "\n")
}

func renderFragment(raw string, width int, opts Options) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	// Without raw_json=1 Reddit escapes the markup a second time.
	if strings.HasPrefix(raw, "&lt;") {
		raw = html.UnescapeString(raw)
	}
	nodes, err := nethtml.ParseFragment(strings.NewReader(raw), bodyContext)
	if err != nil {
		return wrapText(normalize(html.UnescapeString(raw)), width)
	}

	r := renderer{width: width, opts: opts}
	lines := r.blocks(nodes, 0)
	if !opts.KeepNoise {
		lines = dropNoise(lines)
	}
	if !opts.Plain {
		lines = styleLinks(lines)
	}
	return lines
}

type renderer struct {
	width int
	opts  Options
	// tight drops the blank line between blocks, inside list items.
	tight bool
}

func (r renderer) paint(style lipgloss.Style, text string) string {
	if r.opts.Plain || text == "" {
		return text
	}
	return style.Render(text)
}

// narrow returns a renderer for content indented by n columns.
func (r renderer) narrow(n int) renderer {
	if r.width > 0 {
		r.width = max(1, r.width-n)
	}
	return r
}

// fit cuts a line that cannot be wrapped, like a table row, to the width.
func (r renderer) fit(line string) string {
	if r.width < 1 || ansi.StringWidth(line) <= r.width {
		return line
	}
	return ansi.Truncate(line, r.width, "…")
}

// hanging wraps text beside prefix and indents the following lines to the
// prefix width.
func (r renderer) hanging(prefix, text string, style *lipgloss.Style) []string {
	pw := ansi.StringWidth(prefix)
	body := wrapText(text, r.narrow(pw).width)
	pad := strings.Repeat(" ", pw)
	out := make([]string, 0, len(body))
	for i, line := range body {
		if style != nil {
			line = r.paint(*style, line)
		}
		if i == 0 {
			out = append(out, prefix+line)
			continue
		}
		out = append(out, pad+line)
	}
	return out
}

// wrapText wraps each line of text at width cells, splitting words longer
// than a line. A width below 1 only splits on newlines.
func wrapText(text string, width int) []string {
	if width < 1 {
		return strings.Split(text, "\n")
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var line string
		lineWidth := 0
		for _, word := range words {
			w := ansi.StringWidth(word)
			for w > width {
				if line != "" {
					out = append(out, line)
					line, lineWidth = "", 0
				}
				head, rest := splitRunes(word, width)
				out = append(out, head)
				word = rest
				w = ansi.StringWidth(word)
			}
			switch {
			case line == "":
				line, lineWidth = word, w
			case lineWidth+1+w <= width:
				line += " " + word
				lineWidth += 1 + w
			default:
				out = append(out, line)
				line, lineWidth = word, w
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for idx := range s {
		if i == n {
			return s[:idx], s[idx:]
		}
		i++
	}
	return s, ""
}

// normalize collapses runs of spaces on every line and drops empty lines.
func normalize(s string) string {
	s = strings.NewReplacer("\u200b", "", "\u00a0", " ").Replace(s)
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func styleLinks(lines []string) []string {
	for i, line := range lines {
		lines[i] = reHTTPURL.ReplaceAllStringFunc(line, func(u string) string {
			return linkStyle.Render(u)
		})
	}
	return lines
}

func children(n *nethtml.Node) []*nethtml.Node {
	var out []*nethtml.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func attr(n *nethtml.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func hasClass(n *nethtml.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func rawText(n *nethtml.Node) string {
	if n.Type == nethtml.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(rawText(c))
	}
	return b.String()
}
