package names

import (
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^0-9a-zA-Z]+`)

// Clean lowercases a display name and replaces every run of
// non-alphanumeric characters with a single underscore. Cleaned names are
// used as stable identifiers ("name ids") for vendors, locations, and
// clusters, and as part of device-side recorder names.
func Clean(name string) string {
	return strings.ToLower(nonAlnumRe.ReplaceAllString(strings.TrimSpace(name), "_"))
}
