package sax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type splitTestcase struct {
	in   string
	want []string
}

var splitTests = []splitTestcase{
	{"", nil},
	{"plain", []string{"plain"}},
	{"<b>hi</b>", []string{"<", "b", ">", "hi", "</", "b", ">"}},
	{"a&amp;b", []string{"a", "&", "amp;b"}},
	{"<!--c-->", []string{"<!--", "c--", ">"}},
	{"<!doctype html>", []string{"<!", "doctype html", ">"}},
	{"<?xml version='1.0'?>", []string{"<?", "xml version='1.0'?", ">"}},
	// Longest marker wins: "<!--" never splits into "<!" + "--".
	{"<!--", []string{"<!--"}},
	{"<!-", []string{"<!", "-"}},
	{"<", []string{"<"}},
	{"</", []string{"</"}},
	{"&&", []string{"&", "&"}},
	{"<>", []string{"<", ">"}},
	{"a < b > c & d", []string{"a ", "<", " b ", ">", " c ", "&", " d"}},
	{"<a href='x'>", []string{"<", "a href='x'", ">"}},
}

func TestSplit(t *testing.T) {
	for _, tt := range splitTests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got := Split(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// Markers must never appear concatenated inside a non-marker token, and
// joining the tokens back together must reproduce the input.
func TestSplitInvariants(t *testing.T) {
	markers := []string{"<!--", "</", "<!", "<?", "<", ">", "&"}
	for _, tt := range splitTests {
		joined := ""
		for _, tok := range tt.want {
			joined += tok
			if isMarker(tok, markers) {
				continue
			}
			for _, m := range markers {
				assert.NotContains(t, tok, m, "token %q in %q", tok, tt.in)
			}
		}
		assert.Equal(t, tt.in, joined)
	}
}

func isMarker(tok string, markers []string) bool {
	for _, m := range markers {
		if tok == m {
			return true
		}
	}
	return false
}
