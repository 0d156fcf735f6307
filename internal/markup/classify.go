package markup

import "regexp"

// Cue is a named structural pattern.
type Cue struct {
	Name string
	re   *regexp.Regexp
}

// Match reports whether the cue occurs in text.
func (c Cue) Match(text string) bool {
	return c.re.MatchString(text)
}

func cue(name, pattern string) Cue {
	return Cue{Name: name, re: regexp.MustCompile(`(?im)` + pattern)}
}

// cues are evaluated in order; the first hit decides. RE2 keeps every match
// linear in the input length.
var cues = []Cue{
	cue("heading", `^\s*#{1,6}\s+\S`),
	cue("blockquote", `^\s*>\s+`),
	cue("bullet", `^\s*[*+-]\s+\S`),
	cue("numbered", `^\s*\d+\.\s+\S`),
	cue("fence", "```"),
	cue("table_row", `\|.*\|`),
	cue("link", `\[.+?\]\(.+?\)`),
	cue("bold", `__\S+?__|\*\*\S+?\*\*`),
	cue("italic", `(?:^|[^*])\*\w[^*]+\*`),
	cue("code_span", "`[^`]+`"),
	cue("rule", `^\s*([-_*] ?){3,}\s*$`),
	cue("html_heading", `<h[1-6][ >]`),
	cue("html_list", `<(ul|ol|li)[ >]`),
	cue("html_table", `<table[ >]|<tr[ >]|<td[ >]`),
	cue("placeholder_row", `^[ \t]*L#`),
	cue("carriage_return", `\r`),
	cue("line_break", `\n`),
}

// placeholder is the sequential pitch tag the oracle must resolve (L1, L2, ...).
var placeholder = regexp.MustCompile(`\bL#`)

// HasMarkup reports whether text already carries markup worth reformatting.
// Any line break counts, so every multi-line text matches.
func HasMarkup(text string) bool {
	text = Normalize(text)
	for _, c := range cues {
		if c.Match(text) {
			return true
		}
	}
	return false
}

// Cues returns the names of all cues matching the normalized text.
func Cues(text string) []string {
	text = Normalize(text)
	var names []string
	for _, c := range cues {
		if c.Match(text) {
			names = append(names, c.Name)
		}
	}
	return names
}

// HasPlaceholder reports whether text still holds an unresolved L# tag.
func HasPlaceholder(text string) bool {
	return placeholder.MatchString(text)
}
