// Package region derives canonical join keys for Korean administrative
// regions so that statistical tables and boundary datasets can be matched.
package region

import "strings"

// provinceLabels maps the two leading digits of an administrative code to the
// short province label used as a key prefix.
var provinceLabels = map[string]string{
	"11": "서울",
	"26": "부산",
	"27": "대구",
	"28": "인천",
	"29": "광주",
	"30": "대전",
	"31": "울산",
	"36": "세종",
	"41": "경기",
	"42": "충남",
	"44": "충북",
	"46": "전남",
	"47": "경북",
	"48": "경남",
	"50": "제주",
	"51": "강원",
	"52": "전북",
}

// ProvinceLabel returns the short province label for an administrative code.
// Only the first two digits are consulted.
func ProvinceLabel(adminCode string) (string, bool) {
	adminCode = strings.TrimSpace(adminCode)
	if len(adminCode) < 2 {
		return "", false
	}
	label, ok := provinceLabels[adminCode[:2]]
	return label, ok
}

// AggregateLabels lists the province and metropolitan-city total rows that a
// municipal statistics table carries alongside its district rows. Sejong is
// absent: it has no districts, so its total row is its district row.
var AggregateLabels = []string{
	"서울특별시",
	"부산광역시",
	"대구광역시",
	"인천광역시",
	"광주광역시",
	"대전광역시",
	"울산광역시",
	"경기도",
	"강원특별자치도",
	"충청북도",
	"충청남도",
	"전라북도",
	"전북특별자치도",
	"전라남도",
	"경상북도",
	"경상남도",
	"제주특별자치도",
}

var aggregateSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AggregateLabels))
	for _, l := range AggregateLabels {
		m[l] = struct{}{}
	}
	return m
}()

// IsAggregateLabel reports whether name exactly equals a province or
// metropolitan aggregate label (surrounding whitespace ignored).
func IsAggregateLabel(name string) bool {
	_, ok := aggregateSet[strings.TrimSpace(name)]
	return ok
}
