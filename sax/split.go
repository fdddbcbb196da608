package sax

import "strings"

// Structural marker tokens produced by Split. Any other token in the
// stream is an opaque run of text. Markers never occur inside a
// non-marker token.
const (
	markerAmp         = "&"
	markerEndTagOpen  = "</"
	markerTagOpen     = "<"
	markerCommentOpen = "<!--"
	markerDeclOpen    = "<!"
	markerPIOpen      = "<?"
	markerGT          = ">"
)

// Split cuts an HTML string into the coarse token stream the event driver
// consumes: the structural markers above plus the runs of text between
// them. The longest marker wins at each "<", so "<!--" is never split
// into "<!" + "--". Truncated input is fine; whatever markers are present
// are emitted as-is and the driver degrades gracefully.
func Split(htmlText string) []string {
	tokens := make([]string, 0, 16)
	start := 0
	i := 0
	for i < len(htmlText) {
		var marker string
		switch htmlText[i] {
		case '&', '>':
			marker = htmlText[i : i+1]
		case '<':
			rest := htmlText[i:]
			switch {
			case strings.HasPrefix(rest, markerCommentOpen):
				marker = markerCommentOpen
			case strings.HasPrefix(rest, markerEndTagOpen):
				marker = markerEndTagOpen
			case strings.HasPrefix(rest, markerDeclOpen):
				marker = markerDeclOpen
			case strings.HasPrefix(rest, markerPIOpen):
				marker = markerPIOpen
			default:
				marker = markerTagOpen
			}
		default:
			i++
			continue
		}
		if start < i {
			tokens = append(tokens, htmlText[start:i])
		}
		tokens = append(tokens, marker)
		i += len(marker)
		start = i
	}
	if start < len(htmlText) {
		tokens = append(tokens, htmlText[start:])
	}
	return tokens
}
