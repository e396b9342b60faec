package markup

import (
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func plain(lines []string) string {
	return ansi.Strip(strings.Join(lines, "\n"))
}

func TestLines_FallsBackToSource(t *testing.T) {
	got := Lines("", "alpha beta gamma", 11)
	if want := []string{"alpha beta", "gamma"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected wrapped fallback %v, got %v", want, got)
	}
}

func TestLines_RendersCommonRedditElements(t *testing.T) {
	fragment := `<div class="md">
		<h1>Title</h1>
		<p>Intro with a <a href="https://example.com/link">reference</a>.</p>
		<ul><li>First</li><li>Second</li></ul>
		<ol><li>One</li></ol>
		<blockquote><p>Quoted</p></blockquote>
		<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>
	</div>`

	got := plain(Lines(fragment, "", 80))
	for _, want := range []string{
		"▌ Title",
		"Intro with a reference (https://example.com/link).",
		"• First\n• Second",
		"1. One",
		"│ Quoted",
		"| A | B |\n|---|---|\n| 1 | 2 |",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in rendered output, got %q", want, got)
		}
	}
}

func TestRender_Lists(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{"ordered start", `<ol start="3"><li>c</li><li>d</li></ol>`, "3. c\n4. d"},
		{"nested", `<ul><li>outer<ul><li>inner</li></ul></li></ul>`, "• outer\n  ◦ inner"},
		{"loose item", `<ul><li><p>para one</p>
<p>para two</p></li></ul>`, "• para one\n  para two"},
		{"wrapped item", `<ul><li>alpha beta gamma</li></ul>`, "• alpha\n  beta\n  gamma"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			width := 80
			if tc.name == "wrapped item" {
				width = 8
			}
			got := strings.Join(Render(tc.fragment, "", width, Options{Plain: true}), "\n")
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRender_NestedQuotesKeepBars(t *testing.T) {
	fragment := `<blockquote><blockquote><p>deep</p></blockquote><p>shallow</p></blockquote>`
	got := Render(fragment, "", 40, Options{Plain: true})
	if want := []string{"│ │ deep", "│", "│ shallow"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRender_TableColumnsArePadded(t *testing.T) {
	fragment := `<table><tr><th>Name</th><th>N</th></tr><tr><td>go</td><td>10</td></tr></table>`
	got := Render(fragment, "", 80, Options{Plain: true})
	want := []string{"| Name | N  |", "|------|----|", "| go   | 10 |"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}

	cut := Render(fragment, "", 8, Options{Plain: true})
	for _, line := range cut {
		if ansi.StringWidth(line) > 8 {
			t.Fatalf("table row %q wider than 8", line)
		}
	}
}

func TestRender_CodeBlockKeepsIndentation(t *testing.T) {
	got := Render("<pre><code>a\n\tb\n</code></pre>", "", 80, Options{Plain: true})
	if want := []string{"    a", "        b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLines_RedditInlineMarkup(t *testing.T) {
	fragment := `<div class="md"><p>The end: <span class="md-spoiler-text">he lives</span>, see <a href="/r/golang">r/golang</a> and <del>old</del> <sup>tiny</sup></p></div>`

	got := plain(Lines(fragment, "", 120))
	if want := "The end: >!he lives!<, see r/golang and ~~old~~ ^tiny"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestText_RelativeLinksPointAtReddit(t *testing.T) {
	got := Text(`<p><a href="/message/compose?to=mods">message the mods</a></p>`, "")
	if want := "message the mods (https://www.reddit.com/message/compose?to=mods)"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestText_UnescapesDoubleEncodedMarkup(t *testing.T) {
	got := Text("&lt;div class=&quot;md&quot;&gt;&lt;p&gt;fish &amp;amp; chips&lt;/p&gt;&lt;/div&gt;", "")
	if got != "fish & chips" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestLines_DropsBotFooterAndZeroWidthParagraphs(t *testing.T) {
	fragment := `<div class="md"><p>&#x200B;</p><p>Useful answer.</p><p><sup>I am a bot, and this action was performed automatically.</sup></p></div>`

	got := plain(Lines(fragment, "", 80))
	if got != "Useful answer." {
		t.Fatalf("unexpected cleanup result %q", got)
	}

	kept := Text(fragment, "")
	if strings.Contains(kept, "I am a bot") {
		t.Fatalf("expected bot footer removed from text, got %q", kept)
	}
	noisy := Render(fragment, "", 80, Options{Plain: true, KeepNoise: true})
	if !strings.Contains(strings.Join(noisy, "\n"), "I am a bot") {
		t.Fatalf("expected bot footer kept, got %q", noisy)
	}
}

func TestText_IsUnwrappedAndUnstyled(t *testing.T) {
	got := Text(`<div class="md"><p>first para that is long enough to wrap at forty characters</p><p>second &amp; last</p></div>`, "")
	want := "first para that is long enough to wrap at forty characters\n\nsecond & last"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if Text("", "  raw md ") != "raw md" {
		t.Fatalf("expected fallback text")
	}
	if Text("<p>   </p>", "source") != "source" {
		t.Fatalf("expected fallback for an empty render")
	}
}

func TestParagraphKey(t *testing.T) {
	got := paragraphKey("  │  ^(I am a bot)  ")
	if got != "^(i am a bot)" {
		t.Fatalf("unexpected paragraph key: %q", got)
	}
}
