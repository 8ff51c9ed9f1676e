// Package signature anchors every assistant-attributed string to the persona
// by requiring a fixed marker at its start.
package signature

import "strings"

// Default is the marker used when none is configured.
const Default = "[SPARROW]:"

// Validate reports whether response, ignoring surrounding whitespace, already
// starts with marker. A valid response is returned untouched. Otherwise the
// marker is prepended and the original content is kept as is.
func Validate(marker, response string) (bool, string) {
	if strings.HasPrefix(strings.TrimSpace(response), marker) {
		return true, response
	}
	return false, Prefix(marker, response)
}

// Prefix joins marker and text with a single space.
func Prefix(marker, text string) string {
	return marker + " " + text
}
