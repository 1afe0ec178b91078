package allowhtml_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/njchilds90/allowhtml"
)

func TestSanitize_Exact(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Just plain text", "Just plain text"},
		{"bold round trip", "<b>x</b>", "<b>x</b>"},
		{"italic round trip", "<i>x</i>", "<i>x</i>"},
		{"underline round trip", "<u>x</u>", "<u>x</u>"},
		{"nesting preserved", "<b>Bold <i>and italic</i></b>", "<b>Bold <i>and italic</i></b>"},
		{"event handler stripped", `<b onclick="alert(1)">Click me</b>`, "<b>Click me</b>"},
		{"many attributes stripped", `<b class="x" id="y" onclick="z" style="color:red">Text</b>`, "<b>Text</b>"},
		{"quoted gt inside attribute", `<b title=">">x</b>`, "<b>x</b>"},
		{"single quoted and unquoted values", "<b\nclass='a'\tid=b>x</b>", "<b>x</b>"},
		{"uppercase allowed tag", "<B>x</B>", "<b>x</b>"},
		{"ordinary tag keeps text", "<div>Safe text</div>", "Safe text"},
		{"paragraph keeps text", "<p>para</p>", "para"},
		{"link keeps text only", `<a href="javascript:alert(1)">Click</a>`, "Click"},
		{"script removed with body", `<b>Safe</b><script>alert(1)</script><i>Also safe</i>`, "<b>Safe</b><i>Also safe</i>"},
		{"markup inside script is data", `<script>var x = "<b>";</script>after`, "after"},
		{"mixed case raw text end", "<SCRIPT>alert(1)</ScRiPt >x", "x"},
		{"unterminated script", "<script>alert(1)", ""},
		{"self closing script", "<script/>visible", "visible"},
		{"style removed with body", "<style>b{color:red}</style><u>u</u>", "<u>u</u>"},
		{"img removed", `<img src=x onerror=alert("xss")>`, ""},
		{"iframe removed", `<iframe src="evil.com"></iframe>`, ""},
		{"object removed", `<object data="evil.swf"></object>`, ""},
		{"comment dropped", "<!-- <script>alert(1)</script> -->ok", "ok"},
		{"unterminated comment", "ok<!-- never closed <b>", "ok"},
		{"doctype dropped", "<!DOCTYPE html><b>x</b>", "<b>x</b>"},
		{"stray lt", "a < b && c > d", "a &lt; b &amp;&amp; c &gt; d"},
		{"trailing lt", "x<", "x&lt;"},
		{"processing instruction is text", `<?xml version="1.0"?>`, `&lt;?xml version="1.0"?&gt;`},
		{"unterminated quote", `<b title="x`, `&lt;b title="x`},
		{"lt inside quoted value", `<b title="a<b">x</b>`, `&lt;b title="a<b>x</b>`},
		{"truncated tag", "<b", "&lt;b"},
		{"lt inside tag restarts", "<scr<script>ipt>alert(1)</script>", "&lt;scr"},
		{"stray end tag", "</b>stray", "stray"},
		{"empty end tag", "</>x", "&lt;/&gt;x"},
		{"unbalanced end pops", "<b><i>x</b></i>", "<b><i>x</b>"},
		{"unclosed start kept open", "<b>open", "<b>open"},
		{"self closing allowed tag", "<b/>x", "<b>x"},
		{"entities normalized", "AT&amp;T &copy; &", "AT&amp;T © &amp;"},
		{"escaped markup stays escaped", "&lt;script&gt;", "&lt;script&gt;"},
		{"realistic comment", "I <b>really</b> like this <i>product</i>! It's <u>amazing</u>.",
			"I <b>really</b> like this <i>product</i>! It's <u>amazing</u>."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allowhtml.Sanitize(tt.input, allowhtml.DefaultPolicy())
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_NilPolicyUsesDefault(t *testing.T) {
	got := allowhtml.Sanitize(`<b id="x">ok</b><script>bad()</script>`, nil)
	if got != "<b>ok</b>" {
		t.Errorf("got %q, want %q", got, "<b>ok</b>")
	}
}

func TestSanitize_ScriptMarkerNeverSurvives(t *testing.T) {
	inputs := []string{
		"<script>MARKER</script>",
		"before<script>MARKER</script>after",
		"<b><script>MARKER</script></b>",
		`<b title="x<script>MARKER</script>`,
		"<b title=x<script>MARKER</script>",
		"<!x <script>MARKER</script> >",
		"</<script>MARKER</script>",
		"<style><script>MARKER</script></style>",
		"<scr<script>MARKER</script>",
		"<script><script>MARKER</script>",
	}
	for _, in := range inputs {
		got := allowhtml.Sanitize(in, nil)
		if strings.Contains(got, "MARKER") {
			t.Errorf("Sanitize(%q) = %q leaks script body", in, got)
		}
	}
}

func TestSanitize_NoDangerousTagSurvives(t *testing.T) {
	inputs := []string{
		`<script>alert('xss')</script>`,
		`<img src=x onerror=alert("xss")>`,
		`<IMG SRC="javascript:alert(1)">`,
		`<iframe src="evil.com"></iframe>`,
		`<object data="evil.swf"></object>`,
		`<<script>script>alert(1)<</script>/script>`,
		`<b><img/src/onerror=alert(1)></b>`,
		`&lt;img src=x&gt;`,
	}
	for _, in := range inputs {
		got := strings.ToLower(allowhtml.Sanitize(in, nil))
		for _, bad := range []string{"<script", "<iframe", "<object", "<img"} {
			if strings.Contains(got, bad) {
				t.Errorf("Sanitize(%q) = %q contains %s", in, got, bad)
			}
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"<b>x</b>",
		"<b><i>x</b></i>",
		`<b title="x`,
		"a < b && c > d",
		"AT&amp;T &amp;amp; &lt;b&gt;",
		"&am<div>p;",
		"<b>open <i>nested",
		"<script>x</script>tail<style>y",
		"<!-- c --><!DOCTYPE html><?pi?>",
		"<b/><u></u></u>",
	}
	for _, in := range inputs {
		once := allowhtml.Sanitize(in, nil)
		twice := allowhtml.Sanitize(once, nil)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSanitize_CustomPolicy(t *testing.T) {
	p, err := allowhtml.NewPolicy([]string{"p", "br", "EM"}, []string{"textarea"})
	if err != nil {
		t.Fatal(err)
	}
	input := `<p class="x">a<br/>b</p><textarea><p>no</p></textarea><em>e</em><b>b</b>`
	want := "<p>a<br>b</p><em>e</em>b"
	if got := allowhtml.Sanitize(input, p); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSanitize_MaxDepth(t *testing.T) {
	p := allowhtml.DefaultPolicy().WithMaxDepth(1)
	got := allowhtml.Sanitize("<b><i>deep</i></b>", p)
	if got != "<b>deep</b>" {
		t.Errorf("got %q, want %q", got, "<b>deep</b>")
	}
	if allowhtml.DefaultPolicy().MaxDepth() != 0 {
		t.Error("WithMaxDepth must not modify the receiver")
	}
}

func TestSanitizeBalanced(t *testing.T) {
	custom, err := allowhtml.NewPolicy([]string{"p", "br"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		input  string
		policy *allowhtml.Policy
		want   string
	}{
		{"balanced input unchanged", "<b>x <i>y</i></b>", nil, "<b>x <i>y</i></b>"},
		{"open at end", "<b>open <i>nested", nil, "<b>open <i>nested</i></b>"},
		{"implicitly closed tags", "<b><i>x</b></i>y", nil, "<b><i>x</i></b>y"},
		{"self closing non-void", "<u/>x", nil, "<u>x</u>"},
		{"void elements stay unclosed", "<p>a<br>b", custom, "<p>a<br>b</p>"},
		{"stray end tags still dropped", "</i>x<b>y", nil, "x<b>y</b>"},
		{"empty", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allowhtml.SanitizeBalanced(tt.input, tt.policy)
			if got != tt.want {
				t.Fatalf("SanitizeBalanced(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := allowhtml.Sanitize(got, tt.policy); again != got {
				t.Errorf("Sanitize(%q) = %q, want it unchanged", got, again)
			}
		})
	}
}

func TestSanitizeReport(t *testing.T) {
	input := `<b class="x" id="y">t</b><script>s</script><!--c--><div>d</div><`
	got, r := allowhtml.SanitizeReport(input, nil)
	if want := "<b>t</b>d&lt;"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	want := allowhtml.Report{
		StrippedTags:       4,
		StrippedAttributes: 2,
		SuppressedElements: 1,
		Comments:           1,
		Malformed:          1,
	}
	if r != want {
		t.Errorf("report = %+v, want %+v", r, want)
	}
	if !r.Changed() {
		t.Error("Changed() = false, want true")
	}
}

func TestSanitizeReport_UnchangedInput(t *testing.T) {
	_, r := allowhtml.SanitizeReport("plain <b>bold</b> & text", nil)
	if r.Changed() {
		t.Errorf("report = %+v, want no changes", r)
	}
}

func TestSanitizeReader(t *testing.T) {
	input := `<b>hello</b><script>bad</script>`
	got, err := allowhtml.SanitizeReader(strings.NewReader(input), allowhtml.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if got != "<b>hello</b>" {
		t.Errorf("SanitizeReader = %q", got)
	}
}

func TestSanitizeReader_ReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := allowhtml.SanitizeReader(iotest.ErrReader(boom), nil)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestStripTags(t *testing.T) {
	input := `<p>Hello <b class="x">world</b></p><script>x()</script> &amp; more`
	got := allowhtml.StripTags(input)
	if got != "Hello world & more" {
		t.Errorf("StripTags = %q", got)
	}
}

// sanitizeDuration returns the fastest of three runs.
func sanitizeDuration(input string) time.Duration {
	best := time.Duration(math.MaxInt64)
	for i := 0; i < 3; i++ {
		start := time.Now()
		allowhtml.Sanitize(input, nil)
		if d := time.Since(start); d < best {
			best = d
		}
	}
	return best
}

func TestSanitize_LinearTime(t *testing.T) {
	units := []string{
		`<a x="y" z="`,
		`<b title='`,
		"<b x=",
		"<b ",
		"</b",
		"<!x ",
		"<",
		"<script>",
		"<!--",
	}
	const small, large = 32 << 10, 256 << 10
	for _, unit := range units {
		t.Run(unit, func(t *testing.T) {
			short := sanitizeDuration(strings.Repeat(unit, small/len(unit)))
			long := sanitizeDuration(strings.Repeat(unit, large/len(unit)))

			if long > 2*time.Second {
				t.Fatalf("%d bytes took %v", large, long)
			}
			// Eight times the input must not cost anywhere near 64 times
			// the work.
			if short < 100*time.Microsecond {
				short = 100 * time.Microsecond
			}
			if ratio := float64(long) / float64(short); ratio > 24 {
				t.Errorf("8x input took %.1fx longer (%v -> %v)", ratio, short, long)
			}
		})
	}
}

func BenchmarkSanitize(b *testing.B) {
	input := strings.Repeat(`<p>Hello <b onclick="x()">world</b> <script>bad()</script> <a href="http://x.com">link</a> &amp; more</p>`, 100)
	p := allowhtml.DefaultPolicy()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = allowhtml.Sanitize(input, p)
	}
}
