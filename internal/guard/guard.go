// Package guard is the allow-list boundary between generated scripts and the
// host application. Nothing reaches the host bridge without passing Check.
package guard

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	importRe = regexp.MustCompile(`^\s*import\s+(.+)$`)
	fromRe   = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\b`)

	// denied are call forms rejected regardless of the allow-list. The check
	// is lexical: a generated script that hides these behind string tricks is
	// the host addon's problem, this boundary only has to be auditable.
	denied = []*regexp.Regexp{
		regexp.MustCompile(`\b__import__\s*\(`),
		regexp.MustCompile(`\beval\s*\(`),
		regexp.MustCompile(`\bexec\s*\(`),
		regexp.MustCompile(`\bcompile\s*\(`),
		regexp.MustCompile(`\bopen\s*\(`),
		regexp.MustCompile(`\bgetattr\s*\(\s*__builtins__`),
		regexp.MustCompile(`\bos\.system\b`),
		regexp.MustCompile(`\bsubprocess\b`),
	}
)

// Guard validates generated scripts against a configured set of importable
// module prefixes.
type Guard struct {
	allowed map[string]bool
}

// New builds a Guard allowing imports whose top-level module is in allowed.
func New(allowed []string) *Guard {
	m := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		if a != "" {
			m[a] = true
		}
	}
	return &Guard{allowed: m}
}

// Check returns nil when script only imports allowed modules and contains no
// denied call form. The first violation found is returned as the error.
func (g *Guard) Check(script string) error {
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("guard: empty script")
	}

	for _, re := range denied {
		if loc := re.FindString(script); loc != "" {
			return fmt.Errorf("guard: denied call %q", strings.TrimSpace(loc))
		}
	}

	for _, line := range strings.Split(script, "\n") {
		if m := fromRe.FindStringSubmatch(line); m != nil {
			if err := g.checkModule(m[1]); err != nil {
				return err
			}
			continue
		}
		if m := importRe.FindStringSubmatch(line); m != nil {
			for _, part := range strings.Split(m[1], ",") {
				name := strings.TrimSpace(part)
				// "import bpy as b" — the alias is irrelevant.
				if i := strings.Index(name, " as "); i >= 0 {
					name = name[:i]
				}
				if err := g.checkModule(name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (g *Guard) checkModule(name string) error {
	top := name
	if i := strings.IndexByte(top, '.'); i >= 0 {
		top = top[:i]
	}
	if !g.allowed[top] {
		return fmt.Errorf("guard: import %q is not in the allow-list", name)
	}
	return nil
}
