package session

import (
	"fmt"
	"strconv"
	"strings"
)

// duplicateName derives a collision-free name for a copy of source.
// The trailing integer suffix, if any, is stripped to get the base
// name; every existing name in the same base-name family contributes
// its suffix (an exact base-name match counts as 1), and the copy takes
// the maximum plus one. A source with no family yet becomes "name 2".
func duplicateName(existing []string, source string) string {
	base := source
	if idx := trailingNumberIndex(source); idx >= 0 {
		base = strings.TrimRight(source[:idx], " ")
	}

	maxSuffix := 0
	for _, name := range existing {
		if name == base {
			if maxSuffix < 1 {
				maxSuffix = 1
			}
			continue
		}
		if !strings.HasPrefix(name, base) {
			continue
		}
		rest := strings.TrimSpace(name[len(base):])
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			continue
		}
		if n > maxSuffix {
			maxSuffix = n
		}
	}

	if maxSuffix == 0 {
		return base + " 2"
	}
	return fmt.Sprintf("%s %d", base, maxSuffix+1)
}

// trailingNumberIndex returns the index where a trailing integer suffix
// starts, or -1 when the name has none. A purely numeric name has no
// suffix; the digits are the name.
func trailingNumberIndex(name string) int {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) || i == 0 {
		return -1
	}
	return i
}
