package region

import (
	"regexp"
	"strings"
)

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// ProvinceKey reduces a free-text location such as "서울특별시 강남구1" to its
// province token ("서울특별시"): the first whitespace-separated field with
// punctuation removed.
func ProvinceKey(location string) string {
	fields := strings.Fields(clean(location))
	if len(fields) == 0 {
		return ""
	}
	return nonWordRe.ReplaceAllString(fields[0], "")
}

// ProvinceKeyer keys province-level boundaries and accident locations.
type ProvinceKeyer struct{}

// Key implements Keyer. The administrative code is not needed at province
// level.
func (ProvinceKeyer) Key(rawName, _ string) string {
	return ProvinceKey(rawName)
}
