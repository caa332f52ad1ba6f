package parser

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustDocument(t *testing.T, html string) *Document {
	t.Helper()
	doc, err := newDocument(html, testPageURL)
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}

// TestCollect tests rule ordering, deduplication and panic isolation.
func TestCollect(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>unused</p>")
	identity := func(s string) string { return s }

	t.Run("should keep the first item for each key in rule order", func(t *testing.T) {
		t.Parallel()
		rules := []Rule[string]{
			newRule("a", func(*Document) []string { return []string{"x", "y"} }),
			newRule("b", func(*Document) []string { return []string{"y", "z", "x"} }),
		}
		got := collect(doc, rules, identity, discardLogger())
		if want := []string{"x", "y", "z"}; !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, expected %v", got, want)
		}
	})

	t.Run("should isolate a panicking rule", func(t *testing.T) {
		t.Parallel()
		rules := []Rule[string]{
			newRule("broken", func(*Document) []string { panic("boom") }),
			newRule("ok", func(*Document) []string { return []string{"kept"} }),
		}
		got := collect(doc, rules, identity, discardLogger())
		if want := []string{"kept"}; !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, expected %v", got, want)
		}
	})

	t.Run("should drop items with an empty key", func(t *testing.T) {
		t.Parallel()
		rules := []Rule[string]{
			newRule("a", func(*Document) []string { return []string{"", "a"} }),
		}
		got := collect(doc, rules, identity, discardLogger())
		if want := []string{"a"}; !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, expected %v", got, want)
		}
	})

	t.Run("should return an empty non-nil slice when nothing matches", func(t *testing.T) {
		t.Parallel()
		got := collect[string](doc, nil, identity, discardLogger())
		if got == nil || len(got) != 0 {
			t.Errorf("got %v", got)
		}
	})
}

// TestPrefixKey tests key normalization.
func TestPrefixKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		n    int
		same bool
	}{
		{name: "case differences collapse", a: "Content Wins", b: "content wins", n: 50, same: true},
		{name: "whitespace runs collapse", a: "content   wins\n\tagain", b: "content wins again", n: 50, same: true},
		{name: "compatibility forms collapse", a: "ﬁnal answer", b: "final answer", n: 50, same: true},
		{name: "only the prefix is compared", a: "same start then one ending", b: "same start then another", n: 15, same: true},
		{name: "different text stays distinct", a: "first quote", b: "second quote", n: 50, same: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ka, kb := prefixKey(tt.a, tt.n), prefixKey(tt.b, tt.n)
			if (ka == kb) != tt.same {
				t.Errorf("prefixKey(%q)=%q, prefixKey(%q)=%q, same=%v", tt.a, ka, tt.b, kb, tt.same)
			}
		})
	}

	t.Run("should bound the key length in runes", func(t *testing.T) {
		t.Parallel()
		if got := []rune(prefixKey("ééééééééééééé", 5)); len(got) != 5 {
			t.Errorf("got %d runes, expected 5", len(got))
		}
	})
}

// TestTextOf tests visible text extraction.
func TestTextOf(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, `<html><head><title>T</title></head><body>
<div>one<p>two</p>three</div><span>fo</span><b>ur</b>
<script>var hidden = 1;</script><style>p{}</style><noscript>nope</noscript>
</body></html>`)

	if got, want := doc.Text(), "one two three four"; got != want {
		t.Errorf("got %q, expected %q", got, want)
	}
}

// TestResolve tests href resolution against the page URL.
func TestResolve(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>x</p>")
	tests := []struct {
		href string
		want string
	}{
		{href: "/pricing", want: "https://www.example.com/pricing"},
		{href: "other", want: "https://www.example.com/blog/other"},
		{href: "https://docs.example.org/a#b", want: "https://docs.example.org/a#b"},
		{href: "#top", want: ""},
		{href: "javascript:void(0)", want: ""},
		{href: "mailto:team@example.com", want: ""},
		{href: "tel:+15555550100", want: ""},
		{href: "http://[::1", want: ""},
		{href: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			t.Parallel()
			u := doc.resolve(tt.href)
			got := ""
			if u != nil {
				got = u.String()
			}
			if got != tt.want {
				t.Errorf("got %q, expected %q", got, tt.want)
			}
		})
	}
}

// TestTextHelpers tests the rune-based string helpers.
func TestTextHelpers(t *testing.T) {
	t.Parallel()

	t.Run("truncate cuts on rune boundaries", func(t *testing.T) {
		t.Parallel()
		if got := truncate("héllo wörld", 5); got != "héllo" {
			t.Errorf("got %q", got)
		}
		if got := truncate("short", 10); got != "short" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("head returns a rune prefix", func(t *testing.T) {
		t.Parallel()
		if got := head("日本語テキスト", 3); got != "日本語" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("runeWindow widens symmetrically", func(t *testing.T) {
		t.Parallel()
		text := "abcdefghij"
		if got := runeWindow(text, 4, 6, 2); got != "cdefgh" {
			t.Errorf("got %q", got)
		}
		if got := runeWindow(text, 0, 2, 5); got != "abcdefg" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("capItems never returns nil", func(t *testing.T) {
		t.Parallel()
		if got := capItems[int](nil, 3); got == nil {
			t.Error("expected a non-nil slice")
		}
		if got := capItems([]int{1, 2, 3, 4}, 2); !reflect.DeepEqual(got, []int{1, 2}) {
			t.Errorf("got %v", got)
		}
	})
}
