package markup

import (
	"reflect"
	"strings"
	"testing"
)

func TestHasMarkup(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain sentence", "Just a sentence with no markers", false},
		{"punctuated sentence", "Nice route, good rock (sunny).", false},
		{"empty", "", false},
		{"multi line prose", "First paragraph\nsecond line", true},
		{"stray carriage return", "first\rsecond", true},
		{"pipe row", "L1 | 25 m | 6b |", true},
		{"two pipes", "a | b | c", true},
		{"pipes on separate lines", "a |", false},
		{"single pipe", "either | or", false},
		{"fenced code", "```sh\nls\n```", true},
		{"heading", "## Approche", true},
		{"blockquote", "> quoted text", true},
		{"bullet", "- first item", true},
		{"numbered", "1. first pitch", true},
		{"inline link", "see [topo](https://example.org)", true},
		{"bold", "a **bold** move", true},
		{"italic", "an *italic* word", true},
		{"inline code", "use `rope` here", true},
		{"rule", "* * *", true},
		{"html heading", "<h2>Descente</h2>", true},
		{"html list upper case", "<UL><LI>one</LI></UL>", true},
		{"html table", "<table><tr><td>6a</td></tr></table>", true},
		{"placeholder row", "L# 25 m 6a", true},
		{"indented placeholder row", "  l# 25 m 6a", true},
		{"arithmetic star", "5 * 3 = 15", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMarkup(tt.text); got != tt.want {
				t.Errorf("HasMarkup(%q) = %v, want %v (cues %v)", tt.text, got, tt.want, Cues(tt.text))
			}
		})
	}
}

func TestHasMarkup_InvariantUnderNormalize(t *testing.T) {
	inputs := []string{
		"plain",
		"  padded  ",
		"a\r\nb",
		"\r\n| a | b |\r\n",
		"\n\n\nsingle\n\n\n",
		"**x**",
		"L# 20 m",
	}
	for _, in := range inputs {
		if HasMarkup(in) != HasMarkup(Normalize(in)) {
			t.Errorf("HasMarkup differs for %q after normalization", in)
		}
	}
}

func TestHasMarkup_PathologicalInput(t *testing.T) {
	// Long runs of partial cues must not blow up matching time.
	text := strings.Repeat("[a", 20000) + strings.Repeat("*", 20000) + strings.Repeat("_", 20000)
	_ = HasMarkup(text)
}

func TestCues(t *testing.T) {
	got := Cues("## Voie\n| L# | 6a |")
	want := []string{"heading", "table_row", "line_break"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Cues = %v, want %v", got, want)
	}
}

func TestHasPlaceholder(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"L# | 25 m | 6b |", true},
		{"| L1 | 25 m |\n| L# | 30 m |", true},
		{"(L#)", true},
		{"L1 | 25 m | 6b |", false},
		{"XL# is not a tag", false},
		{"l# lower case", false},
	}
	for _, tt := range tests {
		if got := HasPlaceholder(tt.text); got != tt.want {
			t.Errorf("HasPlaceholder(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
