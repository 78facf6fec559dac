package archive

import (
	"strings"

	"pault.ag/go/debian/version"
)

// CompareVersions orders two Debian version strings. It returns a negative
// number when a < b, zero when equal and a positive number when a > b.
// Strings that are not valid Debian versions fall back to byte ordering.
func CompareVersions(a, b string) int {
	va, errA := version.Parse(a)
	vb, errB := version.Parse(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return version.Compare(va, vb)
}
