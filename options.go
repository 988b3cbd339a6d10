package main

import (
	"strconv"
	"strings"

	"stl2png/failure"
)

type Options struct {
	stlFile string
	pngFile string
	width   int
	height  int

	verbose    bool
	cpuProfile string
}

const dimensionFormatError = "Incorrect dimension format, should look like: 640x480"

// parseDimensions splits a WIDTHxHEIGHT string. Both halves must be plain
// base-10 integers; range checks are left to the surface.
func parseDimensions(s string) (width, height int, err error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, failure.Errorf(failure.Config, dimensionFormatError)
	}
	width, werr := strconv.Atoi(parts[0])
	height, herr := strconv.Atoi(parts[1])
	if werr != nil || herr != nil {
		return 0, 0, failure.Errorf(failure.Config, dimensionFormatError)
	}
	return width, height, nil
}
