// Package update checks for new releases, drives the install dialogs and
// runs the throttled background check loop.
package update

import (
	"strconv"
	"strings"
)

// CompareVersions compares two dotted versions.
// Returns -1 if v1 < v2, 0 if equal, 1 if v1 > v2.
// A leading "v" and any pre-release or build suffix are ignored; missing
// components count as zero.
func CompareVersions(v1, v2 string) int {
	p1 := versionParts(v1)
	p2 := versionParts(v2)

	n := len(p1)
	if len(p2) > n {
		n = len(p2)
	}
	for i := 0; i < n; i++ {
		var a, b int
		if i < len(p1) {
			a = p1[i]
		}
		if i < len(p2) {
			b = p2[i]
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}
	return 0
}

func versionParts(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	fields := strings.Split(v, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			n = 0
		}
		parts[i] = n
	}
	return parts
}
