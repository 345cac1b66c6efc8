// Package registry provides a generic thread-safe lookup table.
//
// Tables are filled once, typically from package init, and then read from
// many goroutines. Freeze marks the end of setup; any later Register
// panics, which turns a late mutation into a loud failure instead of a race.
//
//	levels := registry.New[string, int]()
//	levels.Register("A0", 0)
//	levels.Freeze()
//
// Lookup tries keys in order and returns the first hit. It is how callers
// express a fallback chain such as "exact match, else the default":
//
//	v, ok := levels.Lookup(requested, fallback)
package registry
