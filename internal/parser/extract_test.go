package parser

import (
	"strings"
	"testing"

	"github.com/nao1215/contentscale/internal/model"
)

// TestQuoteRules tests each expert quote rule.
func TestQuoteRules(t *testing.T) {
	t.Parallel()

	t.Run("blockquote without citation is not a quote", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<blockquote>An uncited remark that is long enough to count otherwise.</blockquote>`)
		if got := collect(doc, quoteRules(), quoteKey, discardLogger()); len(got) != 0 {
			t.Errorf("expected no quotes, got %+v", got)
		}
	})

	t.Run("blockquote with figcaption is a quote", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<figure><blockquote>Ship the smallest useful thing and listen closely.</blockquote><figcaption>Ana Souza</figcaption></figure>`)
		got := collect(doc, quoteRules(), quoteKey, discardLogger())
		if len(got) != 1 || got[0].Attribution != "Ana Souza" || got[0].Rule != RuleBlockquoteCite {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("inline dash attribution", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<p>"The best content answers a question before the reader asks it." - Maria Lopez, strategist</p>`)
		got := extractInlineQuotes(doc)
		if len(got) != 1 || got[0].Attribution != "Maria Lopez" {
			t.Fatalf("got %+v", got)
		}
		if !strings.HasPrefix(got[0].Text, "The best content") {
			t.Errorf("got text %q", got[0].Text)
		}
	})

	t.Run("paragraph followed by an attribution line", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<div><p>She told us: "Consistency matters more than volume in the long run."</p><p>- Sam Patel, Editor</p></div>`)
		got := extractParagraphQuotes(doc)
		if len(got) != 1 || got[0].Attribution != "Sam Patel, Editor" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("styled testimonial uses the innermost element", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<div class="testimonials"><div class="testimonial">The audit doubled our organic reach within a single quarter. <span class="author">Lee Kim</span></div></div>`)
		got := extractStyledQuotes(doc)
		if len(got) != 1 || got[0].Attribution != "Lee Kim" {
			t.Fatalf("got %+v", got)
		}
		if strings.Contains(got[0].Text, "Lee Kim") {
			t.Errorf("attribution leaked into text %q", got[0].Text)
		}
	})

	t.Run("the same quote found by two rules counts once", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<blockquote>"Measure what your readers do, not what they say they do." <cite>- Ravi Shah</cite></blockquote>`)
		got := collect(doc, quoteRules(), quoteKey, discardLogger())
		if len(got) != 1 {
			t.Errorf("expected one quote, got %+v", got)
		}
	})
}

// TestExtractStatistics tests statistic rules, deduplication and ordering.
func TestExtractStatistics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		html   string
		values []string
	}{
		{
			name:   "percentages and percent words",
			html:   `<p>Conversion rose 12.5% while churn fell 3 percent.</p>`,
			values: []string{"12.5%", "3 percent"},
		},
		{
			name:   "large numbers",
			html:   `<p>The site served 1,200,000 visits and 4.5 million pageviews.</p>`,
			values: []string{"1,200,000", "4.5 million"},
		},
		{
			name:   "a cited figure found by several rules counts once",
			html:   `<p>According to a survey, 40% of readers skim.</p>`,
			values: []string{"40%"},
		},
		{
			name:   "citation phrase looks back when nothing follows",
			html:   `<p>Readers spent 4.5 minutes per page in the study.</p>`,
			values: []string{"4.5"},
		},
		{
			name:   "citation phrase skips step numbers and years",
			html:   `<p>According to the team, step 3 of the plan shipped in 2023 after 350 interviews.</p>`,
			values: []string{"350"},
		},
		{
			name:   "citation phrases match whole words",
			html:   `<p>Teams studying 450 pages learned little.</p>`,
			values: []string{},
		},
		{
			name:   "small figures near a citation phrase are not statistics",
			html:   `<p>According to the team, step 3 comes before step 4.</p>`,
			values: []string{},
		},
		{
			name:   "figures match from a word boundary",
			html:   `<p>In 2024% growth was a typo.</p>`,
			values: []string{"2024%"},
		},
		{
			name:   "no figures",
			html:   `<p>Nothing to count here.</p>`,
			values: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extractStatistics(mustDocument(t, tt.html), discardLogger())
			if len(got) != len(tt.values) {
				t.Fatalf("got %+v, expected values %v", got, tt.values)
			}
			for i, v := range tt.values {
				if got[i].Value != v {
					t.Errorf("statistic %d: got %q, expected %q", i, got[i].Value, v)
				}
			}
		})
	}

	t.Run("context is bounded", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("word ", 200)
		got := extractStatistics(mustDocument(t, "<p>"+long+"50% "+long+"</p>"), discardLogger())
		if len(got) != 1 {
			t.Fatalf("got %d statistics", len(got))
		}
		if n := len([]rune(got[0].Context)); n > 2*statisticContextRadius+3 {
			t.Errorf("context has %d runes", n)
		}
		if got[0].HasSource {
			t.Error("expected no source phrase")
		}
	})
}

// TestCaseStudyRules tests case study detection.
func TestCaseStudyRules(t *testing.T) {
	t.Parallel()

	t.Run("phrase with enough detail", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<p>In this case study we follow a regional retailer through a full redesign of its product pages.</p>`)
		got := collect(doc, caseStudyRules(), caseStudyKey, discardLogger())
		if len(got) != 1 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("quantified result keeps the whole sentence", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<p>Intro. After the migration the team increased organic sessions by 45% in two months. Outro.</p>`)
		got := extractQuantifiedResults(doc)
		if len(got) != 1 {
			t.Fatalf("got %+v", got)
		}
		if want := "After the migration the team increased organic sessions by 45% in two months."; got[0].Text != want {
			t.Errorf("got %q, expected %q", got[0].Text, want)
		}
	})

	t.Run("bare mention is ignored", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<a href="/cases">Case study</a>`)
		if got := collect(doc, caseStudyRules(), caseStudyKey, discardLogger()); len(got) != 0 {
			t.Errorf("got %+v", got)
		}
	})
}

const longAnswer = "You can publish as often as your team can keep quality high, and most teams find that one thorough article each week works better than several thin ones."

// TestExtractFAQs tests FAQ container and subheading detection.
func TestExtractFAQs(t *testing.T) {
	t.Parallel()

	t.Run("definition list inside an FAQ container", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<section id="faq"><dl>
<dt>How often should we publish?</dt><dd>`+longAnswer+`</dd>
<dt>Do short answers count here?</dt><dd>No.</dd>
</dl></section>`)
		got := extractFAQs(doc, discardLogger())
		if len(got) != 1 {
			t.Fatalf("got %+v", got)
		}
		if got[0].Question != "How often should we publish?" || got[0].AnswerWords != countWords(longAnswer) {
			t.Errorf("got %+v", got[0])
		}
	})

	t.Run("details and summary accordion", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<div class="faq-list"><details><summary>Can we reuse old articles?</summary><p>`+longAnswer+`</p></details></div>`)
		got := extractFAQs(doc, discardLogger())
		if len(got) != 1 || got[0].Answer != longAnswer {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("question subheadings outside a container", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<h3>Why do long pages rank?</h3><p>`+longAnswer+`</p>
<h3>Our pricing model explained</h3><p>`+longAnswer+`</p>`)
		got := extractFAQs(doc, discardLogger())
		if len(got) != 1 || got[0].Question != "Why do long pages rank?" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("container wins over subheadings", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<h2>What is a content audit?</h2><p>`+longAnswer+`</p>
<div class="faq"><h3>How long does an audit take?</h3><p>`+longAnswer+`</p></div>`)
		got := extractFAQs(doc, discardLogger())
		if len(got) != 1 || got[0].Question != "How long does an audit take?" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("page-level faq flags are not containers", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<html><body class="has-faq-widget">
<h2>Introduction to the product</h2><p>`+longAnswer+`</p>
<h2>Pricing and plans overview</h2><p>`+longAnswer+`</p>
</body></html>`)
		if got := extractFAQs(doc, discardLogger()); len(got) != 0 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("wrappers of the main content are not containers", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<div id="page" class="layout-faq"><main>
<h2>Getting started with audits</h2><p>`+longAnswer+`</p>
</main></div>`)
		if got := extractFAQs(doc, discardLogger()); len(got) != 0 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("container headings must read as questions", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<section class="faq">
<h3>Shipping and returns policy</h3><p>`+longAnswer+`</p>
<h3>Which regions do you ship to?</h3><p>`+longAnswer+`</p>
</section>`)
		got := extractFAQs(doc, discardLogger())
		if len(got) != 1 || got[0].Question != "Which regions do you ship to?" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("average answer words", func(t *testing.T) {
		t.Parallel()
		if got := averageAnswerWords(nil); got != 0 {
			t.Errorf("got %v", got)
		}
	})
}

// TestCountLinks tests internal and external classification.
func TestCountLinks(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, `<body>
<a href="/about">About</a>
<a href="https://example.com/team">Team</a>
<a href="https://WWW.Example.com/contact">Contact</a>
<a href="https://research.example.org/report#summary">Annual research report</a>
<a href="https://research.example.org/report">Annual research report again</a>
<a href="https://other.example.net/">Go</a>
<a href="ftp://files.example.net/data.csv">Raw dataset download</a>
<a href="#top">Top</a>
<a href="mailto:team@example.com">Mail us</a>
<a href="javascript:void(0)">Menu</a>
</body>`)

	lc := countLinks(doc)
	if lc.internal != 3 {
		t.Errorf("got %d internal links, expected 3", lc.internal)
	}
	if lc.external != 4 {
		t.Errorf("got %d external links, expected 4", lc.external)
	}

	citations := collect(doc, citationRules(), citationKey, discardLogger())
	if len(citations) != 1 {
		t.Fatalf("got citations %+v", citations)
	}
	if citations[0].URL != "https://research.example.org/report" || citations[0].Text != "Annual research report" {
		t.Errorf("got %+v", citations[0])
	}
}

// TestExtractSchema tests JSON-LD type extraction.
func TestExtractSchema(t *testing.T) {
	t.Parallel()

	t.Run("a malformed block does not affect valid ones", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<head>
<script type="application/ld+json">{"@type": "Article",</script>
<script type="application/ld+json">{"@context": "https://schema.org", "@type": "FAQPage"}</script>
</head>`)
		info := extractSchema(doc, discardLogger())
		if info.blocks != 1 || info.skipped != 1 {
			t.Errorf("got blocks=%d skipped=%d", info.blocks, info.skipped)
		}
		if !info.hasType(faqPageType) || len(info.types) != 1 {
			t.Errorf("got types %v", info.types)
		}
	})

	t.Run("arrays, graphs and prefixed types", func(t *testing.T) {
		t.Parallel()
		doc := mustDocument(t, `<script type="application/ld+json">
{"@context": "https://schema.org", "@graph": [
  {"@type": "https://schema.org/Article"},
  {"@type": ["Organization", "Brand"]},
  {"@type": "schema:WebPage"}
]}
</script>
<script type="APPLICATION/LD+JSON">[{"@type": "BreadcrumbList"}, {"@type": "Article"}]</script>
<script type="text/javascript">{"@type": "Ignored"}</script>`)
		info := extractSchema(doc, discardLogger())
		want := []string{"Article", "Brand", "BreadcrumbList", "Organization", "WebPage"}
		if strings.Join(info.types, ",") != strings.Join(want, ",") {
			t.Errorf("got %v, expected %v", info.types, want)
		}
	})

	t.Run("no blocks yields an empty list", func(t *testing.T) {
		t.Parallel()
		info := extractSchema(mustDocument(t, "<p>x</p>"), discardLogger())
		if info.types == nil || len(info.types) != 0 {
			t.Errorf("got %v", info.types)
		}
	})
}

// TestCountImages tests lazy sources, placeholders and alt coverage.
func TestCountImages(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, `<body>
<img src="/a.png" alt="Chart of weekly sessions">
<img data-src="/b.png" src="/placeholder.gif" alt="short">
<img data-srcset="/c-320.png 320w, /c-640.png 640w" alt="Team photo at the offsite">
<img src="data:image/gif;base64,R0lGOD">
<img src="/spacer.gif" alt="A long but irrelevant alt text">
<img alt="no source at all here">
</body>`)

	ic := countImages(doc)
	if ic.total != 3 {
		t.Errorf("got %d images, expected 3", ic.total)
	}
	if ic.withAlt != 2 {
		t.Errorf("got %d images with alt, expected 2", ic.withAlt)
	}
}

// TestMeasureReadability tests sentence statistics and Flesch bounds.
func TestMeasureReadability(t *testing.T) {
	t.Parallel()

	t.Run("empty text scores zero", func(t *testing.T) {
		t.Parallel()
		if rs := measureReadability(""); rs != (readabilityStats{}) {
			t.Errorf("got %+v", rs)
		}
	})

	t.Run("simple text is clamped to 100", func(t *testing.T) {
		t.Parallel()
		rs := measureReadability("I go. We run. It is hot.")
		if rs.flesch != 100 {
			t.Errorf("got flesch %v", rs.flesch)
		}
		if rs.sentences != 3 || rs.avgSentenceLength != 2.3 {
			t.Errorf("got %+v", rs)
		}
	})

	t.Run("dense text is clamped to 0", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("internationalization institutionalization ", 20)
		rs := measureReadability(text)
		if rs.flesch != 0 {
			t.Errorf("got flesch %v", rs.flesch)
		}
		if rs.longSentences != 1 {
			t.Errorf("got %d long sentences", rs.longSentences)
		}
	})
}

// TestCountSyllables tests the syllable heuristic.
func TestCountSyllables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word string
		want int
	}{
		{word: "the", want: 1},
		{word: "cake", want: 1},
		{word: "reader", want: 2},
		{word: "content", want: 2},
		{word: "Readers!", want: 2},
		{word: "rhythm", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			t.Parallel()
			if got := countSyllables(tt.word); got != tt.want {
				t.Errorf("got %d, expected %d", got, tt.want)
			}
		})
	}
}

// TestMeasureStructure tests headings, paragraphs, tables and viewport detection.
func TestMeasureStructure(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, `<html><head>
<meta name="Viewport" content="width = device-width, initial-scale=1">
</head><body>
<h1>A</h1><h2>B</h2><h2>C</h2><h3>D</h3>
<ul><li>x</li></ul><ol><li>y</li></ol>
<p>one two three</p><p>   </p><p>four five six seven eight</p>
<table><thead><tr><th>Plan</th></tr></thead><tr><td>Basic vs Pro</td></tr></table>
<table><tr><td>plain</td></tr></table>
</body></html>`)

	st := measureStructure(doc)
	if st.headings != [6]int{1, 2, 1, 0, 0, 0} {
		t.Errorf("got headings %v", st.headings)
	}
	if !st.hierarchy() {
		t.Error("expected a valid hierarchy")
	}
	if st.lists != 2 {
		t.Errorf("got %d lists", st.lists)
	}
	if st.paragraphs != 2 || st.avgParagraphLength != 4 {
		t.Errorf("got paragraphs=%d avg=%v", st.paragraphs, st.avgParagraphLength)
	}
	if st.tables != 1 || st.comparisonTables != 1 {
		t.Errorf("got tables=%d comparison=%d", st.tables, st.comparisonTables)
	}
	if !st.mobileResponsive {
		t.Error("expected a device-width viewport")
	}

	t.Run("missing viewport", func(t *testing.T) {
		t.Parallel()
		if measureStructure(mustDocument(t, "<p>x</p>")).mobileResponsive {
			t.Error("expected no viewport")
		}
	})
}

// TestMeasureSignals tests the supplemental counters.
func TestMeasureSignals(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, `<body>
<nav class="toc"><a href="#one">One</a></nav>
<p>For example, a checklist keeps every draft consistent across writers.</p>
<ol><li>Step 1 outline</li><li>Write</li></ol>
<p>Data from 2025 research shows the trend (Smith 2025). Older 2019 data is ignored.</p>
<p>Our certified specialist team uses AI and automation for SEO content.</p>
<button>Get started</button><a href="/signup">Sign up</a>
<a href="https://stats.example.gov/tables">Tables</a>
<video src="/demo.mp4"></video>
<time datetime="2026-01-02">Jan 2</time>
<div class="author-bio">Pat writes about search, content strategy and analytics for growing teams.</div>
</body>`)

	var c model.Counts
	measureSignals(doc, 2026, &c)
	if c.Examples != 1 {
		t.Errorf("got %d examples", c.Examples)
	}
	if c.StepByStep != 1 {
		t.Errorf("got %d steps", c.StepByStep)
	}
	if c.YearMentions != 2 {
		t.Errorf("got %d recent year mentions", c.YearMentions)
	}
	if c.DataRecency != 1 {
		t.Errorf("got %d recent data mentions", c.DataRecency)
	}
	if c.DataCitations != 1 {
		t.Errorf("got %d data citations", c.DataCitations)
	}
	if c.Credentials != 2 {
		t.Errorf("got %d credentials", c.Credentials)
	}
	if c.TrendingTopics != 2 {
		t.Errorf("got %d trending topics", c.TrendingTopics)
	}
	if c.CTAs != 2 {
		t.Errorf("got %d CTAs", c.CTAs)
	}
	if c.FactSources != 1 || c.AuthorityLinks != 1 {
		t.Errorf("got fact=%d authority=%d", c.FactSources, c.AuthorityLinks)
	}
	if c.Videos != 1 || !c.PublicationDate || !c.TableOfContents || !c.AuthorBio {
		t.Errorf("got %+v", c)
	}
}

// TestRecentYearAlternation tests the year window.
func TestRecentYearAlternation(t *testing.T) {
	t.Parallel()

	if got := recentYearAlternation(2026); got != "2024|2025|2026" {
		t.Errorf("got %q", got)
	}
}
