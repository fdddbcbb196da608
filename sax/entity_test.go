package sax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unescapeTestcase struct {
	in   string // text possibly containing entity references
	want string // fully decoded form
}

var unescapeTests = []unescapeTestcase{
	{"", ""},
	{"no entities here", "no entities here"},
	{"1 &lt; 2 &amp;&AMP; 4 &gt; 3&#10;", "1 < 2 && 4 > 3\n"},
	// The second &lt has no semicolon, so it falls outside the
	// reference grammar and passes through as literal text.
	{"&lt;&lt <- unfinished entity&gt;", "<&lt <- unfinished entity>"},
	// Bare & in a query string is untouched: "copy" is word-shaped but
	// is followed by "=", not ";".
	{"/foo?bar=baz&copy=true", "/foo?bar=baz&copy=true"},
	{"&quot;&apos;&nbsp;", "\"' "},
	{"&#65;&#x41;&#X61;", "AAa"},
	{"&unknownname123;", "&unknownname123;"},
	// Resolved by the x/net/html oracle behind the default resolver.
	{"&copy;", "©"},
	{"&hellip;", "…"},
}

func TestUnescape(t *testing.T) {
	for _, tt := range unescapeTests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Unescape(tt.in))
		})
	}
}

// Decoding text that contains no entity-shaped substrings is a no-op, so
// decoded output without references is a fixed point.
func TestUnescapeIdempotentOnEntityFreeText(t *testing.T) {
	for _, tt := range unescapeTests {
		once := Unescape(tt.in)
		if entityRE.MatchString(once) {
			// Decoding is deliberately not idempotent when the
			// output itself looks like a reference.
			continue
		}
		assert.Equal(t, once, Unescape(once), "input %q", tt.in)
	}
}

func TestResolveWellKnownCaseSensitive(t *testing.T) {
	r := NewResolver(nil)
	assert.Equal(t, "<", r.Resolve("lt"))
	assert.Equal(t, "<", r.Resolve("LT"))
	assert.Equal(t, "&", r.Resolve("amp"))
	assert.Equal(t, "&", r.Resolve("AMP"))
	// Mixed case is a different name; with no oracle it stays literal.
	assert.Equal(t, "&Lt;", r.Resolve("Lt"))
}

func TestResolveNumeric(t *testing.T) {
	r := NewResolver(nil)
	assert.Equal(t, "A", r.Resolve("#65"))
	assert.Equal(t, "\n", r.Resolve("#10"))
	assert.Equal(t, "A", r.Resolve("#x41"))
	assert.Equal(t, "A", r.Resolve("#X41"))
	assert.Equal(t, "€", r.Resolve("#x20AC"))
	// Permissive by design: control code points decode as-is.
	assert.Equal(t, "\x00", r.Resolve("#0"))
	// Out-of-range digits fail numeric parsing and stay literal.
	assert.Equal(t, "&#99999999999999;", r.Resolve("#99999999999999"))
	assert.Equal(t, "&#x;", r.Resolve("#x"))
}

type fakeOracle struct {
	calls int
	table map[string]string
}

func (f *fakeOracle) LookupEntity(name string) (string, bool) {
	f.calls++
	text, ok := f.table[name]
	return text, ok
}

func TestResolveOracle(t *testing.T) {
	oracle := &fakeOracle{table: map[string]string{"copy": "©"}}
	r := NewResolver(oracle)

	require.Equal(t, "©", r.Resolve("copy"))
	require.Equal(t, 1, oracle.calls)

	// Successful lookups are cached; the oracle is asked only once.
	require.Equal(t, "©", r.Resolve("copy"))
	require.Equal(t, 1, oracle.calls)

	// Failed lookups are not cached.
	assert.Equal(t, "&nope99;", r.Resolve("nope99"))
	assert.Equal(t, "&nope99;", r.Resolve("nope99"))
	assert.Equal(t, 3, oracle.calls)
}

func TestResolveOracleSafeNameGate(t *testing.T) {
	oracle := &fakeOracle{table: map[string]string{}}
	r := NewResolver(oracle)

	// Too short, starts with a digit, or contains punctuation: the
	// oracle is never consulted for unsafe identifier shapes.
	assert.Equal(t, "&a;", r.Resolve("a"))
	assert.Equal(t, "&1ab;", r.Resolve("1ab"))
	assert.Equal(t, "&a-b;", r.Resolve("a-b"))
	assert.Equal(t, 0, oracle.calls)
}

func TestResolverUnescapeEmpty(t *testing.T) {
	r := NewResolver(nil)
	assert.Equal(t, "", r.Unescape(""))
}
