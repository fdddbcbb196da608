// Package html4 carries the element schema the scanner consults: for each
// known element name, a bitmask describing how its content must be scanned
// and how a downstream policy should treat it.
package html4

import "strings"

// Flags classifies an element's content model.
type Flags uint16

const (
	// OptionalEndTag marks elements whose end tag may be omitted.
	OptionalEndTag Flags = 1 << iota
	// Empty marks void elements that never have content.
	Empty
	// CDATA marks raw-text elements whose content is passed through
	// without any markup interpretation.
	CDATA
	// RCDATA marks replaceable-character-data elements: entities are
	// recognized inside them but tags are not.
	RCDATA
	// Unsafe marks elements a sanitization policy should not allow
	// through untouched.
	Unsafe
	// Foldable marks structural elements whose tags are dropped while
	// their content is kept.
	Foldable
	// Script and Style further distinguish the two unsafe CDATA elements
	// that carry executable or styling payloads.
	Script
	Style
)

// Elements maps lowercased HTML4 element names to their content-model
// flags. Names absent from the table have no flags set.
var Elements = map[string]Flags{
	"a":          0,
	"abbr":       0,
	"acronym":    0,
	"address":    0,
	"applet":     Unsafe,
	"area":       Empty,
	"b":          0,
	"base":       Empty | Unsafe,
	"basefont":   Empty | Unsafe,
	"bdo":        0,
	"big":        0,
	"blockquote": 0,
	"body":       OptionalEndTag | Unsafe | Foldable,
	"br":         Empty,
	"button":     0,
	"caption":    0,
	"center":     0,
	"cite":       0,
	"code":       0,
	"col":        Empty,
	"colgroup":   OptionalEndTag,
	"dd":         OptionalEndTag,
	"del":        0,
	"dfn":        0,
	"dir":        0,
	"div":        0,
	"dl":         0,
	"dt":         OptionalEndTag,
	"em":         0,
	"fieldset":   0,
	"font":       0,
	"form":       0,
	"frame":      Empty | Unsafe,
	"frameset":   Unsafe,
	"h1":         0,
	"h2":         0,
	"h3":         0,
	"h4":         0,
	"h5":         0,
	"h6":         0,
	"head":       OptionalEndTag | Unsafe | Foldable,
	"hr":         Empty,
	"html":       OptionalEndTag | Unsafe | Foldable,
	"i":          0,
	"iframe":     Unsafe,
	"img":        Empty,
	"input":      Empty,
	"ins":        0,
	"isindex":    Empty | Unsafe,
	"kbd":        0,
	"label":      0,
	"legend":     0,
	"li":         OptionalEndTag,
	"link":       Empty | Unsafe,
	"listing":    CDATA,
	"map":        0,
	"menu":       0,
	"meta":       Empty | Unsafe,
	"nobr":       0,
	"noembed":    CDATA | Unsafe,
	"noframes":   CDATA | Unsafe,
	"noscript":   CDATA | Unsafe,
	"object":     Unsafe,
	"ol":         0,
	"optgroup":   0,
	"option":     OptionalEndTag,
	"p":          OptionalEndTag,
	"param":      Empty | Unsafe,
	"plaintext":  OptionalEndTag | CDATA | Unsafe,
	"pre":        0,
	"q":          0,
	"s":          0,
	"samp":       0,
	"script":     CDATA | Unsafe | Script,
	"select":     0,
	"small":      0,
	"span":       0,
	"strike":     0,
	"strong":     0,
	"style":      CDATA | Unsafe | Style,
	"sub":        0,
	"sup":        0,
	"table":      0,
	"tbody":      OptionalEndTag,
	"td":         OptionalEndTag,
	"textarea":   RCDATA,
	"tfoot":      OptionalEndTag,
	"th":         OptionalEndTag,
	"thead":      OptionalEndTag,
	"title":      RCDATA | Unsafe,
	"tr":         OptionalEndTag,
	"tt":         0,
	"u":          0,
	"ul":         0,
	"var":        0,
	"wbr":        Empty,
	"xmp":        CDATA,
}

// Lookup returns the content-model flags for an element name, folding the
// name to lower case first. Unknown elements get zero flags.
func Lookup(name string) Flags {
	return Elements[strings.ToLower(name)]
}
