package markup

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	nethtml "golang.org/x/net/html"
)

// table draws a pipe table with padded columns. Rows wider than the
// screen are cut.
func (r renderer) table(n *nethtml.Node) []string {
	rows, header := r.tableRows(n)
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, 0, 4)
	for _, row := range rows {
		for j, cell := range row {
			if j == len(widths) {
				widths = append(widths, 0)
			}
			widths[j] = max(widths[j], ansi.StringWidth(cell))
		}
	}

	sep := r.paint(tableBorder, "|")
	out := make([]string, 0, len(rows)+1)
	for i, row := range rows {
		cells := make([]string, len(widths))
		for j, w := range widths {
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			cell += strings.Repeat(" ", w-ansi.StringWidth(cell))
			if i == 0 && header {
				cell = r.paint(tableHeader, cell)
			}
			cells[j] = cell
		}
		out = append(out, r.fit(sep+" "+strings.Join(cells, " "+sep+" ")+" "+sep))
		if i == 0 && header {
			dashes := make([]string, len(widths))
			for j, w := range widths {
				dashes[j] = strings.Repeat("-", w+2)
			}
			out = append(out, r.fit(sep+r.paint(tableBorder, strings.Join(dashes, "|"))+sep))
		}
	}
	return out
}

// tableRows returns the cell texts of every row and whether the first row
// is a header.
func (r renderer) tableRows(n *nethtml.Node) ([][]string, bool) {
	var rows [][]string
	header := false
	var walk func(*nethtml.Node)
	walk = func(node *nethtml.Node) {
		if node.Type == nethtml.ElementNode && node.Data == "tr" {
			var row []string
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != nethtml.ElementNode || (c.Data != "td" && c.Data != "th") {
					continue
				}
				if c.Data == "th" && len(rows) == 0 {
					header = true
				}
				row = append(row, strings.ReplaceAll(normalize(r.inline(children(c))), "\n", " "))
			}
			if len(row) > 0 {
				rows = append(rows, row)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return rows, header
}
