package sax

import (
	"regexp"
	"strings"
)

// looseAmpRE matches an "&" that cannot be the start of an entity or
// numeric reference: one not followed by a letter, by "#" and a digit, or
// by "#x" and a hex digit. The character after the "&", if any, is
// captured so the replacement can keep it.
var looseAmpRE = regexp.MustCompile(`(?i)&([^a-z#]|#(?:[^0-9x]|x(?:[^0-9a-f]|$)|$)|$)`)

// NormalizeRCData re-escapes replaceable character data so it round-trips
// safely as text: loose ampersands become "&amp;", then every "<" and ">"
// is escaped. Already-valid references like "&amp;" or "&lt;" are left
// alone. The ampersand pass must run first so the "&" introduced by
// escaping "<" and ">" is never itself re-escaped.
func NormalizeRCData(rcdata string) string {
	if rcdata == "" {
		return rcdata
	}
	rcdata = looseAmpRE.ReplaceAllString(rcdata, "&amp;$1")
	rcdata = strings.ReplaceAll(rcdata, "<", "&lt;")
	return strings.ReplaceAll(rcdata, ">", "&gt;")
}
