package format

import (
	"strings"
	"testing"

	"github.com/BTreeMap/DefineBot/internal/models"
)

const testFooter = "\n\n---\n\n^(Request a definition using `!define <word>`.)"

func TestFormatRealisticDefinition(t *testing.T) {
	f := New(testFooter)
	d := &models.Definition{
		Headword:  `<p><strong class="headword">serendipity</strong> (<i>countable and uncountable</i>, plural <b>serendipities</b>)</p>`,
		WordClass: "Noun",
		Body: `<ol><li>A combination of events which have come together by chance to make a surprisingly good outcome.` +
			`<ul><li>An example sentence that should be removed.</li></ul></li>` +
			`<li>An unsought, unintended finding [from 1754]</li></ol>`,
		SourceURL: "https://en.wiktionary.org/wiki/serendipity",
	}

	got := f.Format(d)

	if !strings.HasPrefix(got, "#### **serendipity** (_countable and uncountable_, plural **serendipities**)\n*Noun*\n\n") {
		t.Errorf("unexpected heading, got:\n%s", got)
	}
	if !strings.Contains(got, "1. A combination of events which have come together by chance to make a surprisingly good outcome.") {
		t.Errorf("first definition item missing, got:\n%s", got)
	}
	if !strings.Contains(got, "1. An unsought, unintended finding") {
		t.Errorf("second definition item missing, got:\n%s", got)
	}
	if strings.Contains(got, "example sentence") {
		t.Errorf("example block should have been removed, got:\n%s", got)
	}
	if strings.Contains(got, "[from 1754]") || strings.Contains(got, "1754") {
		t.Errorf("citation should have been removed, got:\n%s", got)
	}
	if strings.Contains(got, "<") || strings.Contains(got, ">") {
		t.Errorf("markup tags should have been stripped, got:\n%s", got)
	}
	if !strings.Contains(got, "[^*Wiktionary*](https://en.wiktionary.org/wiki/serendipity)") {
		t.Errorf("source link missing, got:\n%s", got)
	}
	if !strings.HasSuffix(got, testFooter) {
		t.Errorf("footer missing, got:\n%s", got)
	}
}

func TestFormatConvertsDefinitionSublists(t *testing.T) {
	f := New("")
	d := &models.Definition{
		WordClass: "Verb",
		Body:      `<ol><li>To do a thing.<dl><dd>A clarifying note.</dd></dl></li></ol>`,
		SourceURL: "https://en.wiktionary.org/wiki/thing",
	}
	got := f.Format(d)
	if !strings.Contains(got, "1. To do a thing.") {
		t.Errorf("list item not converted, got:\n%s", got)
	}
	if !strings.Contains(got, "  A clarifying note.") {
		t.Errorf("dd block not indented, got:\n%s", got)
	}
}

func TestFormatOmitsEmptySections(t *testing.T) {
	f := New("")
	d := &models.Definition{
		Body:      `<ol><li>Bare definition.</li></ol>`,
		SourceURL: "",
	}
	got := f.Format(d)
	if strings.Contains(got, "####") {
		t.Errorf("empty headword should omit the heading, got:\n%s", got)
	}
	if strings.Contains(got, "*\n") && strings.HasPrefix(got, "*") {
		t.Errorf("empty word class should omit the italic line, got:\n%s", got)
	}
	if strings.Contains(got, "Wiktionary") {
		t.Errorf("empty source URL should omit the link, got:\n%s", got)
	}
	if !strings.Contains(got, "1. Bare definition.") {
		t.Errorf("definition body missing, got:\n%s", got)
	}
}

func TestFormatUnescapesEntities(t *testing.T) {
	f := New("")
	d := &models.Definition{
		WordClass: "Noun",
		Body:      `<ol><li>Salt &amp; vinegar &#91;obsolete&#93;</li></ol>`,
	}
	got := f.Format(d)
	if !strings.Contains(got, "Salt & vinegar") {
		t.Errorf("entities not unescaped, got:\n%s", got)
	}
	if strings.Contains(got, "obsolete") {
		t.Errorf("entity-encoded citation should have been removed, got:\n%s", got)
	}
}
