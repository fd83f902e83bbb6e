// internal/services/content_parser_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSNSContentParser(t *testing.T) {
	text := `제목: 여름 필수템 무선 마우스
설명: 가볍고 조용한 클릭감
오늘만 특가
#마우스 #무선
Description: overwritten later
#final #tags`

	got := SNSContentParser.Parse(text)

	assert.Equal(t, "여름 필수템 무선 마우스", got[FieldTitle])
	assert.Equal(t, "overwritten later", got[FieldDescription])
	assert.Equal(t, "#final #tags", got[FieldHashtags])
	assert.Len(t, got, 3)
}

func TestContentParserMissingFieldsAreEmpty(t *testing.T) {
	got := SNSContentParser.Parse("just some text\nwith no markers")

	assert.Equal(t, map[string]string{
		FieldTitle:       "",
		FieldDescription: "",
		FieldHashtags:    "",
	}, got)
}

func TestContentParserFallbackText(t *testing.T) {
	got := SNSContentParser.Parse("콘텐츠 생성 중 오류가 발생했습니다.")

	assert.Empty(t, got[FieldTitle])
	assert.Empty(t, got[FieldHashtags])
}

func TestContentParserFirstRuleWins(t *testing.T) {
	parser := ContentParser{
		Rules: []FieldRule{
			{Field: "a", Prefixes: []string{"Key:"}},
			{Field: "b", Prefixes: []string{"Key:"}},
		},
	}

	got := parser.Parse("  Key:   value  ")

	assert.Equal(t, "value", got["a"])
	assert.Empty(t, got["b"])
}

func TestSEOContentParser(t *testing.T) {
	text := `Meta Title: Wireless Mouse | Shop
메타 설명: 조용한 무선 마우스
키워드: 마우스, 무선, 사무용
#ignored`

	got := SEOContentParser.Parse(text)

	assert.Equal(t, "Wireless Mouse | Shop", got[FieldMetaTitle])
	assert.Equal(t, "조용한 무선 마우스", got[FieldMetaDescription])
	assert.Equal(t, "마우스, 무선, 사무용", got[FieldKeywords])
	_, hasHashtags := got[FieldHashtags]
	assert.False(t, hasHashtags)
}
