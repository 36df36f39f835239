package sanitize

import (
	"strings"
	"testing"
)

func TestNarrativeStripsScriptKeepsBold(t *testing.T) {
	got := Narrative(`<script>alert(1)</script><b>bold</b>`)
	if got != "<b>bold</b>" {
		t.Errorf("expected only the bold portion, got %q", got)
	}
}

func TestNarrativeKeepsAllowedTags(t *testing.T) {
	in := `<p>Hi <b>there</b> <i>you</i> <strong>ok</strong> <em>fine</em> <u>sure</u><br/></p>`
	got := Narrative(in)
	for _, tag := range AllowedTags {
		if !strings.Contains(got, "<"+tag) {
			t.Errorf("allowed tag %q should survive, output %q", tag, got)
		}
	}
}

func TestNarrativeStripsDisallowedTagsNotContent(t *testing.T) {
	got := Narrative(`<div>Donna <span class="x">smirks</span></div>`)
	if got != "Donna smirks" {
		t.Errorf("disallowed tags are stripped, not escaped; got %q", got)
	}
}

func TestNarrativeStripsAttributes(t *testing.T) {
	got := Narrative(`<b onclick="evil()">bold</b>`)
	if got != "<b>bold</b>" {
		t.Errorf("attributes must not survive, got %q", got)
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText(`<b>Harvey</b> nods.<script>alert(1)</script>`)
	if got != "Harvey nods." {
		t.Errorf("expected bare text, got %q", got)
	}
}
