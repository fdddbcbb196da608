package sax

import (
	"regexp"
	"strings"
	"sync"
)

// endTagMatchers caches the compiled per-element end-tag matcher, keyed by
// lowercased tag name. The set of raw-text element names is tiny, so the
// cache only ever holds a handful of entries.
var (
	endTagMu       sync.Mutex
	endTagMatchers = map[string]*regexp.Regexp{}
)

// endTagMatcher returns a matcher for the token that follows a "</"
// marker: the element name, case-insensitively, followed by whitespace, a
// slash, or the end of the token. "</scripty" must not end a script
// element.
func endTagMatcher(name string) *regexp.Regexp {
	endTagMu.Lock()
	defer endTagMu.Unlock()
	re := endTagMatchers[name]
	if re == nil {
		re = regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(name) + `(?:[\s/]|$)`)
		endTagMatchers[name] = re
	}
	return re
}

// scanRawText collects the character data of a raw-text or RCDATA element
// starting at tg.next. It stops just before the "</" that begins a
// matching end tag, returning the joined content and the position of that
// "</" so the driver re-processes the end tag normally. When no matching
// end tag exists the content runs to the end of the stream: trailing
// script or style text is better treated as content than lost.
func (d *driver) scanRawText(tg tag) (string, int) {
	re := endTagMatcher(tg.name)
	end := len(d.tokens)
	p := tg.next
	for ; p < end; p++ {
		if d.tokens[p] == markerEndTagOpen && p+1 < end && re.MatchString(d.tokens[p+1]) {
			break
		}
	}
	return strings.Join(d.tokens[tg.next:p], ""), p
}
