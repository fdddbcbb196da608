package sax

import (
	"regexp"
	"strconv"
	"sync"

	"golang.org/x/net/html"
)

// entityRE is the reference grammar used by Unescape: a named reference,
// a decimal numeric reference, or a hex numeric reference, terminated by
// a semicolon. Bare ampersands and unterminated references fall outside
// the pattern and pass through untouched, so query strings like
// "?a=1&copy=true" are not mangled.
var entityRE = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|\w+);`)

// safeNameRE is the conservative identifier shape we are willing to hand
// to an external oracle: a letter followed by at least one more letter or
// digit.
var safeNameRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]+$`)

// An Oracle resolves entity names the built-in table doesn't know.
// Implementations report false for names they cannot resolve.
type Oracle interface {
	LookupEntity(name string) (string, bool)
}

type stdEntities struct{}

func (stdEntities) LookupEntity(name string) (string, bool) {
	ref := "&" + name + ";"
	if text := html.UnescapeString(ref); text != ref {
		return text, true
	}
	return "", false
}

// StandardEntities resolves names against the full HTML5 entity table
// shipped with golang.org/x/net/html.
var StandardEntities Oracle = stdEntities{}

// wellKnownEntities seeds every resolver cache. Lookups are
// case-sensitive: "lt" and "LT" are distinct names that happen to map to
// the same text.
var wellKnownEntities = map[string]string{
	"lt":   "<",
	"LT":   "<",
	"gt":   ">",
	"GT":   ">",
	"amp":  "&",
	"AMP":  "&",
	"quot": `"`,
	"apos": "'",
	"nbsp": " ",
}

// A Resolver decodes single character references and owns a cache of
// resolved names. The cache is append-only for the resolver's lifetime
// and guarded for concurrent growth, so one resolver may back several
// parses.
type Resolver struct {
	mu       sync.RWMutex
	entities map[string]string
	oracle   Oracle
}

// NewResolver returns a resolver seeded with the well-known entity table.
// oracle may be nil, in which case unknown names stay unresolved.
func NewResolver(oracle Oracle) *Resolver {
	entities := make(map[string]string, len(wellKnownEntities))
	for k, v := range wellKnownEntities {
		entities[k] = v
	}
	return &Resolver{entities: entities, oracle: oracle}
}

// Resolve decodes one character reference body, the substring between "&"
// and ";". Unknown names come back in their literal "&name;" form rather
// than being dropped or guessed.
//
// Numeric references decode whatever code point their digits name; there
// is no validation against control, surrogate, or noncharacter ranges.
func (r *Resolver) Resolve(name string) string {
	r.mu.RLock()
	text, ok := r.entities[name]
	r.mu.RUnlock()
	if ok {
		return text
	}

	if n, ok := numericReference(name); ok {
		return string(n)
	}

	if r.oracle != nil && safeNameRE.MatchString(name) {
		if text, ok := r.oracle.LookupEntity(name); ok {
			r.mu.Lock()
			r.entities[name] = text
			r.mu.Unlock()
			return text
		}
	}

	return "&" + name + ";"
}

// numericReference decodes "#123" or "#x1F" style bodies. Anything that
// is not a full, in-range numeric reference reports false.
func numericReference(name string) (rune, bool) {
	if len(name) < 2 || name[0] != '#' {
		return 0, false
	}
	digits, base := name[1:], 10
	if digits[0] == 'x' || digits[0] == 'X' {
		digits, base = digits[1:], 16
	}
	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

// Unescape replaces every entity reference in s with its resolved text.
// Text outside the reference grammar passes through verbatim. Decoding is
// meant to happen exactly once: re-running it on already-decoded text that
// happens to contain "&name;"-shaped substrings will decode them again.
func (r *Resolver) Unescape(s string) string {
	if s == "" {
		return s
	}
	return entityRE.ReplaceAllStringFunc(s, func(ref string) string {
		return r.Resolve(ref[1 : len(ref)-1])
	})
}

// defaultResolver backs the package-level convenience entry points,
// consulting the x/net/html table for names outside the seed table.
var defaultResolver = NewResolver(StandardEntities)

// Unescape decodes entity references using the default resolver. It is
// total: empty input comes back unchanged and nothing ever fails.
func Unescape(s string) string {
	return defaultResolver.Unescape(s)
}
