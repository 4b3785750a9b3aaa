package quiver

import "regexp"

// Regular expressions for date guessing.
var (
	naiveDatetimeMatcher *regexp.Regexp
	utcDatetimeMatcher   *regexp.Regexp
)

func init() {
	registerDatetimeMatchers()
}

func registerDatetimeMatchers() {
	naiveDatetimeMatcher = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,6})?$`)
	utcDatetimeMatcher = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,6})?(Z|\+00:00)$`)
}
