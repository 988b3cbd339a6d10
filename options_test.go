package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stl2png/failure"
)

func TestParseDimensions(t *testing.T) {
	w, h, err := parseDimensions("640x480")
	assert.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	// range checking is not done here
	w, h, err = parseDimensions("0x-3")
	assert.NoError(t, err)
	assert.Equal(t, 0, w)
	assert.Equal(t, -3, h)
}

func TestParseDimensionsMalformed(t *testing.T) {
	for _, s := range []string{"", "640", "abcx480", "640x", "x480", "640X480", "640x480x2", "64.5x48", "640 x 480"} {
		_, _, err := parseDimensions(s)
		if assert.Error(t, err, "input %q", s) {
			assert.ErrorIs(t, err, failure.ErrConfig)
			assert.Equal(t, dimensionFormatError, err.Error())
		}
	}
}
