package accident

import (
	"strconv"
	"strings"
	"unicode"
)

// AgeBucketLabels are the eight decade buckets, youngest first.
var AgeBucketLabels = []string{
	"0세~9세", "10세~19세", "20세~29세", "30세~39세",
	"40세~49세", "50세~59세", "60세~69세", "70세~",
}

// ParseAge reads ages written like "34세". Anything without digits, or with
// more than three, is not an age.
func ParseAge(s string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
	if digits == "" || len(digits) > 3 {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AgeBucket returns the AgeBucketLabels index for age. 0–9 includes zero and
// the last bucket is open-ended.
func AgeBucket(age int) int {
	if age < 0 {
		return -1
	}
	if b := age / 10; b < len(AgeBucketLabels)-1 {
		return b
	}
	return len(AgeBucketLabels) - 1
}

// BucketizeAge counts rows per age bucket of field, in bucket order with
// empty buckets kept. Rows with a missing or non-numeric age are left out
// of this view only.
func BucketizeAge(rows []Record, field string) CountTable {
	counts := make([]int, len(AgeBucketLabels))
	for _, r := range rows {
		age, ok := ParseAge(r.Field(field))
		if !ok {
			continue
		}
		counts[AgeBucket(age)]++
	}
	t := CountTable{Fields: []string{field + "대"}, CountColumn: ColPeople}
	for i, label := range AgeBucketLabels {
		t.Rows = append(t.Rows, Count{Group: []string{label}, Count: counts[i]})
	}
	return t
}
