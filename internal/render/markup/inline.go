package markup

import (
	"strings"

	nethtml "golang.org/x/net/html"
)

// inline flattens nodes into one string. Text nodes keep their own spacing
// and <br> becomes a newline.
func (r renderer) inline(nodes []*nethtml.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		r.writeInline(&b, n)
	}
	return b.String()
}

func (r renderer) writeInline(b *strings.Builder, n *nethtml.Node) {
	switch n.Type {
	case nethtml.TextNode:
		b.WriteString(n.Data)
		return
	case nethtml.ElementNode:
	default:
		return
	}

	inner := func() string {
		return strings.ReplaceAll(normalize(r.inline(children(n))), "\n", " ")
	}
	switch n.Data {
	case "script", "style", "noscript":
	case "br":
		b.WriteByte('\n')
	case "img":
		label := attr(n, "alt")
		if label == "" {
			label = "image"
		}
		b.WriteString(r.paint(mediaStyle, "["+normalize(label)+"]"))
	case "a":
		b.WriteString(r.link(n, inner()))
	case "code":
		if text := inner(); text != "" {
			b.WriteString(r.paint(codeStyle, "`"+text+"`"))
		}
	case "del", "s", "strike":
		if text := inner(); text != "" {
			b.WriteString("~~" + text + "~~")
		}
	case "sup":
		text := inner()
		switch {
		case text == "":
		case strings.Contains(text, " "):
			b.WriteString("^(" + text + ")")
		default:
			b.WriteString("^" + text)
		}
	case "span":
		if !hasClass(n, "md-spoiler-text") {
			b.WriteString(r.inline(children(n)))
			return
		}
		if text := inner(); text != "" {
			b.WriteString(">!" + text + "!<")
		}
	default:
		b.WriteString(r.inline(children(n)))
	}
}

// link shows the target after the text unless the text already says it.
// Subreddit and user mentions read as their target.
func (r renderer) link(n *nethtml.Node, text string) string {
	href := attr(n, "href")
	switch {
	case href == "":
		return text
	case text == "":
		return absolute(href)
	case strings.HasPrefix(href, "/r/"), strings.HasPrefix(href, "/u/"), strings.HasPrefix(href, "/user/"):
		return text
	case strings.EqualFold(text, href), strings.EqualFold(text, absolute(href)):
		return absolute(href)
	default:
		return text + " (" + absolute(href) + ")"
	}
}

func absolute(href string) string {
	if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
		return redditOrigin + href
	}
	return href
}
