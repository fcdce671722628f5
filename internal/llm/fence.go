package llm

import "strings"

// StripFence removes a single leading markdown fence line ("```python" or
// bare "```") and the matching trailing "```" from reply. It is a textual
// strip, not a parser: embedded backticks and additional fences pass through
// untouched. Stripping an already-stripped reply is a no-op.
func StripFence(reply string) string {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```python")
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
