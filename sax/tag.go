package sax

import (
	"strings"

	"github.com/skattyadz/Caja-HTML-Sanitizer/sax/html4"
)

// tag describes one parsed start or end tag: its lowercased name, a flat
// alternating name/value attribute list, the content-model flags for the
// name, and the token position just past the tag's closing ">".
type tag struct {
	name  string
	attrs []string
	flags html4.Flags
	next  int
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isLetterByte(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isWordByte(b byte) bool {
	return isLetterByte(b) || ('0' <= b && b <= '9') || b == '_'
}

// tagNameLen returns the length of the leading tag identifier: letters,
// digits, underscore, hyphen, or colon.
func tagNameLen(s string) int {
	i := 0
	for i < len(s) && (isWordByte(s[i]) || s[i] == '-' || s[i] == ':') {
		i++
	}
	return i
}

func attrNameLen(s string) int {
	i := 0
	for i < len(s) && (isWordByte(s[i]) || s[i] == '-' || s[i] == '.' || s[i] == ':') {
		i++
	}
	return i
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}
	return i
}

// looksLikeAttrName reports whether s starts with "name=" (optionally
// space-padded before the "="). It is the lookahead guard that stops an
// unquoted value from absorbing the next attribute, so <foo a= b=c> parses
// as a="" b="c" and not a="b=c".
func looksLikeAttrName(s string) bool {
	if len(s) == 0 || !isLetterByte(s[0]) {
		return false
	}
	i := 1
	for i < len(s) && (isWordByte(s[i]) || s[i] == '-') {
		i++
	}
	i = skipSpace(s, i)
	return i < len(s) && s[i] == '='
}

// attrMatch is one application of the leading-attribute grammar against
// the working buffer.
type attrMatch struct {
	consumed int    // bytes of the buffer covered by the match
	name     string
	hasValue bool   // an "=" was present
	rawValue string // value as matched, quotes included when quoted
	quote    byte   // opening quote character, 0 when unquoted
	closed   bool   // the opening quote was closed inside the buffer
}

// matchAttr matches the start of buf against the attribute grammar:
// a name, then optionally "=" and a double-quoted, single-quoted, or bare
// unquoted value. Quoted values take precedence over unquoted ones, and
// looksLikeAttrName guards the unquoted branch. The match never has zero
// width, which is what keeps the caller's retry loop finite.
func matchAttr(buf string) (attrMatch, bool) {
	i := skipSpace(buf, 0)
	n := attrNameLen(buf[i:])
	if n == 0 {
		return attrMatch{}, false
	}
	m := attrMatch{name: buf[i : i+n]}
	i += n

	j := skipSpace(buf, i)
	if j >= len(buf) || buf[j] != '=' {
		m.consumed = i
		return m, true
	}
	m.hasValue = true
	i = skipSpace(buf, j+1)

	switch {
	case i < len(buf) && (buf[i] == '"' || buf[i] == '\''):
		m.quote = buf[i]
		if end := strings.IndexByte(buf[i+1:], m.quote); end >= 0 {
			m.closed = true
			m.rawValue = buf[i : i+2+end]
			i += 2 + end
		} else {
			m.rawValue = buf[i:]
			i = len(buf)
		}
	case looksLikeAttrName(buf[i:]):
		// The would-be value is really the next attribute; this
		// attribute's value stays empty and consumes nothing.
	default:
		end := i
		for end < len(buf) && !isSpaceByte(buf[end]) && buf[end] != '"' && buf[end] != '\'' {
			end++
		}
		m.rawValue = buf[i:end]
		i = end
	}
	m.consumed = i
	return m, true
}

// dropGarbage removes one leading garbage character plus the run of
// following characters that are neither lowercase letters nor whitespace.
// Progress is guaranteed: at least one byte always goes.
func dropGarbage(buf string) string {
	i := 1
	for i < len(buf) && !('a' <= buf[i] && buf[i] <= 'z') && !isSpaceByte(buf[i]) {
		i++
	}
	return buf[i:]
}

// decodeAttrValue strips surrounding quotes if present, removes NUL
// bytes, and decodes entity references.
func (d *driver) decodeAttrValue(v string) string {
	if len(v) > 0 && (v[0] == '"' || v[0] == '\'') {
		if len(v) >= 2 {
			v = v[1 : len(v)-1]
		} else {
			v = ""
		}
	}
	return d.resolver.Unescape(strings.ReplaceAll(v, "\x00", ""))
}

// parseTagAndAttrs parses the tag whose name token sits at pos; the
// preceding token is the "<" or "</" marker. It reports false for
// malformed tags that never close, and the caller must then drop the rest
// of the stream: a tag we cannot delimit is a tag we refuse to guess at.
func (d *driver) parseTagAndAttrs(pos int) (tag, bool) {
	tok := d.tokens[pos]
	n := tagNameLen(tok)
	if n == 0 {
		return tag{}, false
	}
	name := strings.ToLower(tok[:n])
	tg := tag{name: name, flags: d.schema.ContentModelFlags(name)}

	// Concatenate tokens up to the next bare ">" into the working
	// buffer, optimistically assuming that ">" is unquoted. The quote
	// recovery below fixes things up when it turns out not to be.
	buf := tok[n:]
	p := pos + 1
	end := len(d.tokens)
	for p < end && d.tokens[p] != markerGT {
		buf += d.tokens[p]
		p++
	}
	if p >= end {
		return tag{}, false
	}

	for buf != "" {
		m, ok := matchAttr(buf)
		switch {
		case !ok:
			buf = dropGarbage(buf)
		case m.quote != 0 && !m.closed:
			// Unterminated quote: re-absorb tokens, including the
			// ">" that ended the optimistic scan, until the quote
			// is satisfied and a real ">" shows up.
			sawQuote := false
			parts := []string{buf, d.tokens[p]}
			for p++; p < end; p++ {
				if sawQuote {
					if d.tokens[p] == markerGT {
						break
					}
				} else if strings.IndexByte(d.tokens[p], m.quote) >= 0 {
					sawQuote = true
				}
				parts = append(parts, d.tokens[p])
			}
			if p >= end {
				return tag{}, false
			}
			buf = strings.Join(parts, "")
		default:
			value := ""
			if m.hasValue {
				value = d.decodeAttrValue(m.rawValue)
			}
			tg.attrs = append(tg.attrs, strings.ToLower(m.name), value)
			buf = buf[m.consumed:]
		}
	}
	tg.next = p + 1
	return tg, true
}
