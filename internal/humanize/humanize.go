// Package humanize formats the byte counts and plain counts that show up
// in medialibchecker's summary and performance logs.
package humanize

import (
	"github.com/dustin/go-humanize"
)

// Bytes renders n using SI (base-1000) units ("1.2 MB", "340 B"), matching
// go-humanize's default byte formatting.
func Bytes(n uint64) string {
	return humanize.Bytes(n)
}

// Comma renders n with thousands separators, used for plain counts
// (files, directories) in the summary log where a bare digit string is
// harder to scan.
func Comma(n int64) string {
	return humanize.Comma(n)
}
