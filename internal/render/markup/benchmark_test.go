package markup

import "testing"

func BenchmarkLines_LongComment(b *testing.B) {
	fragment := `<div class="md">
		<p>Intro with a <a href="https://example.com/link">reference</a>.</p>
		<blockquote><p>Quoted claim from the parent comment</p></blockquote>
		<ul><li>First point</li><li>Second point</li></ul>
		<pre><code>go test ./...
</code></pre>
		<table><tr><th>Metric</th><th>Value</th></tr><tr><td>Speed</td><td>Fast</td></tr></table>
	</div>`

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Lines(fragment, "", 72)
	}
}
