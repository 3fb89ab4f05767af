package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_UniqueDistrictHasNoPrefix(t *testing.T) {
	n := DefaultNormalizer()
	assert.Equal(t, "수원시", n.Normalize("수원시", "4111000000"))
	assert.Equal(t, "수원시", n.Normalize("  수원시 ", ""))
	// A prefix on a unique name is dropped.
	assert.Equal(t, "춘천시", n.Normalize("강원-춘천시", ""))
}

func TestNormalize_AdminCodePrefix(t *testing.T) {
	n := DefaultNormalizer()
	assert.Equal(t, "대구-동구", n.Normalize("동구", "27140"))
	assert.Equal(t, "대전-동구", n.Normalize("동구", "30110"))
	assert.Equal(t, "인천-중구", n.Normalize("중구", "28110"))
	assert.Equal(t, "울산-북구", n.Normalize("북구", "3120000000"))
}

func TestNormalize_AdminCodeWinsOverRawPrefix(t *testing.T) {
	n := DefaultNormalizer()
	assert.Equal(t, "대구-동구", n.Normalize("대전-동구", "27140"))
}

func TestNormalize_RawPrefixWithoutCode(t *testing.T) {
	n := DefaultNormalizer()
	assert.Equal(t, "대구-동구", n.Normalize("대구-동구", ""))
	assert.Equal(t, "대구-동구", n.Normalize(" 대구 - 동구 ", ""))
	assert.Equal(t, "동구", n.Normalize("동구", ""))
}

func TestNormalize_UnknownCodeDegradesToDistrict(t *testing.T) {
	n := DefaultNormalizer()
	assert.Equal(t, "동구", n.Normalize("동구", "99110"))
	assert.Equal(t, "동구", n.Normalize("대구-동구", "9"))
}

func TestNormalize_Overrides(t *testing.T) {
	n := DefaultNormalizer()
	tests := []struct {
		raw, code, want string
	}{
		{"충남-고성군", "", "강원-고성군"},
		{"경북-북구", "", "포항-북구"},
		{"경북-남구", "", "포항-남구"},
		{"창원시", "", "통합창원시"},
		{"서울-강서구", "", "강서구"},
		{"경남-고성군", "", "고성군"},
		{"부산-남구", "", "남구"},
		{"부산-동구", "", "동구"},
		{"부산-북구", "", "북구"},
		{"부산-서구", "", "서구"},
		{"서울-중구", "", "중구"},
		// Same corrections reached through boundary admin codes.
		{"고성군", "4282000000", "강원-고성군"},
		{"고성군", "4882000000", "고성군"},
		{"북구", "4711300000", "포항-북구"},
		{"강서구", "1150000000", "강서구"},
		{"강서구", "2644000000", "부산-강서구"},
		{"창원시", "4812000000", "통합창원시"},
	}
	for _, tt := range tests {
		t.Run(tt.raw+"/"+tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw, tt.code))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := DefaultNormalizer()
	names := []string{
		"동구", "대구-동구", "충남-고성군", "고성군", "강원-고성군", "경북-북구", "포항-북구",
		"창원시", "통합창원시", "서울-강서구", "강서구", "수원시", " 중구 ", "부산-중구", "대구-", "-동구", "",
	}
	codes := []string{"", "11", "26", "27", "42", "47", "48", "51", "99", "x"}
	for _, name := range names {
		for _, code := range codes {
			once := n.Normalize(name, code)
			assert.Equal(t, once, n.Normalize(once, code), "name=%q code=%q", name, code)
		}
	}
}

func TestNormalize_NFC(t *testing.T) {
	n := DefaultNormalizer()
	// "동구" written with decomposed jamo.
	decomposed := "\u1103\u1169\u11bc\u1100\u116e"
	assert.Equal(t, "대구-동구", n.Normalize(decomposed, "27"))
}

func TestWithDuplicates(t *testing.T) {
	base := NewNormalizer(nil, nil)
	assert.Equal(t, "동구", base.Normalize("동구", "27"))

	ext := base.WithDuplicates("동구")
	assert.Equal(t, "대구-동구", ext.Normalize("동구", "27"))
	assert.False(t, base.IsDuplicate("동구"), "original must be unchanged")
	assert.Equal(t, []string{"동구"}, ext.Duplicates())
}

func TestNormalizer_NilOverrides(t *testing.T) {
	n := NewNormalizer(DefaultDuplicates, nil)
	assert.Equal(t, "충남-고성군", n.Normalize("충남-고성군", ""))
}

func TestKeyerInterface(t *testing.T) {
	var k Keyer = DefaultNormalizer()
	assert.Equal(t, "대전-동구", k.Key("동구", "30"))

	k = ProvinceKeyer{}
	assert.Equal(t, "서울특별시", k.Key("서울특별시 강남구 역삼동", "11"))
}

func TestProvinceLabel(t *testing.T) {
	label, ok := ProvinceLabel("3611000000")
	require.True(t, ok)
	assert.Equal(t, "세종", label)

	_, ok = ProvinceLabel("4")
	assert.False(t, ok)
	_, ok = ProvinceLabel("43")
	assert.False(t, ok)
	assert.Len(t, provinceLabels, 17)
}

func TestAggregateLabels(t *testing.T) {
	assert.Len(t, AggregateLabels, 17)
	assert.True(t, IsAggregateLabel(" 서울특별시 "))
	assert.True(t, IsAggregateLabel("전북특별자치도"))
	assert.False(t, IsAggregateLabel("세종특별자치시"))
	assert.False(t, IsAggregateLabel("서울"))
}
