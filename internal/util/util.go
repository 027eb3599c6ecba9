package util

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func GetIDFromString(str *string) string {
	hasher := sha1.New()
	hasher.Write([]byte(*str))

	return hex.EncodeToString(hasher.Sum(nil))
}

// GetIDFromParts hashes parts joined with '|'.
func GetIDFromParts(parts ...string) string {
	str := strings.Join(parts, "|")

	return GetIDFromString(&str)
}

// newNaturalCollator compares digit runs by value and ignores case and accents.
// A collator is not safe for concurrent use, so callers create their own.
func newNaturalCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric, collate.IgnoreCase, collate.IgnoreDiacritics)
}

// NaturalLess reports whether a sorts before b, so that "2" precedes "10".
func NaturalLess(a, b string) bool {
	return newNaturalCollator().CompareString(a, b) < 0
}

// SortNatural sorts s in place by key using natural order. Equal keys keep their order.
func SortNatural[T any](s []T, key func(T) string) {
	c := newNaturalCollator()
	sort.SliceStable(s, func(i, j int) bool {
		return c.CompareString(key(s[i]), key(s[j])) < 0
	})
}

// HasParentSegment reports whether the slash separated path p has a ".." segment.
// Names that merely contain dots, like "v1..v2", do not count.
func HasParentSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}

	return false
}
