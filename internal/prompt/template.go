// Package prompt holds the instruction templates the role executors send to
// the text-generation backend. Templates are plain strings with {name}
// placeholders; role plugin definitions can replace them wholesale.
package prompt

import "strings"

// Template pairs an instruction text with its sampling parameters.
type Template struct {
	Text        string
	Temperature float32
	MaxTokens   int
}

// Render substitutes {key} placeholders with the supplied values. Unknown
// placeholders are left in place so a bad template is visible in the output
// rather than silently blank.
func (t Template) Render(vars map[string]string) string {
	out := t.Text
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}

// Merge overlays non-zero fields of other onto t and returns the result.
func (t Template) Merge(other Template) Template {
	merged := t
	if strings.TrimSpace(other.Text) != "" {
		merged.Text = other.Text
	}
	if other.Temperature != 0 {
		merged.Temperature = other.Temperature
	}
	if other.MaxTokens != 0 {
		merged.MaxTokens = other.MaxTokens
	}
	return merged
}
