package util

import "strings"

// NormalizeUUID strips dashes and upcases so UUIDs from different radio
// stacks compare equal regardless of formatting.
func NormalizeUUID(s string) string {
	return strings.ToUpper(strings.Replace(s, "-", "", -1))
}

func UuidEqualStr(a string, b string) bool {
	return NormalizeUUID(a) == NormalizeUUID(b)
}
