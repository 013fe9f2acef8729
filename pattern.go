package clearurls

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single match of any compiled pattern. Rule data
// uses a backtracking regex dialect, so a pathological pattern could otherwise
// stall a clean indefinitely.
var DefaultMatchTimeout = time.Second

// pattern holds one rule pattern in either of its two states: the source
// string as it came from the rule data, or the compiled matcher. Once re is
// set it never changes.
type pattern struct {
	source string
	wrap   bool
	re     *regexp2.Regexp
}

func newPattern(source string) *pattern {
	return &pattern{source: source}
}

// newParamPattern returns a pattern that matches the query or fragment
// parameter named by source together with its leading delimiter and value.
func newParamPattern(source string) *pattern {
	return &pattern{source: source, wrap: true}
}

func newPatterns(sources []string, param bool) []*pattern {
	patterns := make([]*pattern, 0, len(sources))
	for _, s := range sources {
		if param {
			patterns = append(patterns, newParamPattern(s))
		} else {
			patterns = append(patterns, newPattern(s))
		}
	}
	return patterns
}

func wrapParam(name string) string {
	return `(?:&amp;|[/?#&])(?:` + name + `=[^&]*)`
}

// expr is the expression actually handed to the regex engine.
func (p *pattern) expr() string {
	if p.wrap {
		return wrapParam(p.source)
	}
	return p.source
}

func (p *pattern) compiled() bool {
	return p.re != nil
}

// compile is a no-op on an already compiled pattern.
func (p *pattern) compile() error {
	if p.compiled() {
		return nil
	}
	re, err := regexp2.Compile(p.expr(), regexp2.None)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	re.MatchTimeout = DefaultMatchTimeout
	p.re = re
	return nil
}

// groups is the number of capture groups, not counting the whole match.
func (p *pattern) groups() int {
	return len(p.re.GetGroupNumbers()) - 1
}

func (p *pattern) match(s string) (bool, error) {
	return p.re.MatchString(s)
}

// removeAll deletes every match of p from s.
func (p *pattern) removeAll(s string) (string, error) {
	return p.re.Replace(s, "", -1, -1)
}

// firstGroup reports whether p matches s and, if it does, the text of its
// first capture group. A match in which the first group did not participate
// is an error.
func (p *pattern) firstGroup(s string) (string, bool, error) {
	m, err := p.re.FindStringMatch(s)
	if err != nil {
		return "", false, err
	}
	if m == nil {
		return "", false, nil
	}
	g := m.GroupByNumber(1)
	if g == nil || len(g.Captures) == 0 {
		return "", true, ErrNoCaptureGroup
	}
	return g.String(), true, nil
}

func (p *pattern) String() string {
	return p.expr()
}
