package html4

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	assert.Equal(t, CDATA|Unsafe|Script, Lookup("script"))
	assert.Equal(t, CDATA|Unsafe|Script, Lookup("SCRIPT"))
	assert.Equal(t, CDATA|Unsafe|Style, Lookup("style"))
	assert.Equal(t, RCDATA, Lookup("textarea"))
	assert.Equal(t, RCDATA|Unsafe, Lookup("title"))
	assert.Equal(t, Empty, Lookup("br"))
	assert.Equal(t, OptionalEndTag, Lookup("p"))
	assert.Equal(t, Flags(0), Lookup("div"))
	assert.Equal(t, Flags(0), Lookup("no-such-element"))
}

func TestContentModelsAreDisjoint(t *testing.T) {
	for name, flags := range Elements {
		assert.False(t, flags&CDATA != 0 && flags&RCDATA != 0,
			"%s cannot be both raw and escapable", name)
	}
}
