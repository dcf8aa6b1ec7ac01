package util

import (
	"fmt"
	"go/token"
	"sort"
	"strconv"

	"github.com/xtgo/set"
)

// StringTakeUntil returns the string up to and excluding char as well as the remainder excluding char
//
// if char was not found, then tail returns the empty string
func StringTakeUntil(s string, char rune) (head string, tail string) {
	for i, r := range s {
		if r == char && len(s[i:]) != 0 {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// MangledIdentFrom returns a deterministic string resulting from pos and name, which is also a valid Go identifier
//
// It is useful when creating intermediary identifiers in generated code, so that they
// never clash with names in the source program.
func MangledIdentFrom(pos token.Pos, name string) string {
	return fmt.Sprintf("pixl_%v_at_%v", name, strconv.Itoa(int(pos)))
}

// SortedUnique returns a sorted copy of items without duplicates.
func SortedUnique(items []string) []string {
	data := sort.StringSlice(append([]string(nil), items...))
	sort.Sort(data)
	return data[:set.Uniq(data)]
}
