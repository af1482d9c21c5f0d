package template

import "regexp"

// nameRe accepts a run of word characters optionally followed by one of _ - . ,
// Go's $ matches only at the end of input, so a trailing newline is rejected.
var nameRe = regexp.MustCompile(`^[A-Za-z0-9_]+[A-Za-z0-9_.,-]?$`)

// ValidName reports whether name is safe to use as a file name segment.
// It must be checked before any path is built from name.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}
