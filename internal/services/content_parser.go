// internal/services/content_parser.go
package services

import "strings"

// FieldRule attributes a line to Field when the trimmed line starts with one
// of Prefixes.
type FieldRule struct {
	Field    string
	Prefixes []string
}

// ContentParser recovers structured fields from free generated text.
//
// Lines are scanned in order. The first rule whose prefix matches a line wins
// for that line and its value is the trimmed text after the prefix. A line
// that matches no rule but contains '#' is taken whole as HashtagField.
// Later lines overwrite earlier ones, so the last hashtag line wins. Fields
// with no matching line come back as empty strings.
type ContentParser struct {
	Rules        []FieldRule
	HashtagField string
}

func (p ContentParser) Parse(text string) map[string]string {
	result := make(map[string]string, len(p.Rules)+1)
	for _, rule := range p.Rules {
		result[rule.Field] = ""
	}
	if p.HashtagField != "" {
		result[p.HashtagField] = ""
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if field, value, ok := p.match(trimmed); ok {
			result[field] = value
			continue
		}

		if p.HashtagField != "" && strings.Contains(trimmed, "#") {
			result[p.HashtagField] = trimmed
		}
	}

	return result
}

func (p ContentParser) match(line string) (field, value string, ok bool) {
	for _, rule := range p.Rules {
		for _, prefix := range rule.Prefixes {
			if strings.HasPrefix(line, prefix) {
				return rule.Field, strings.TrimSpace(line[len(prefix):]), true
			}
		}
	}
	return "", "", false
}

const (
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldHashtags        = "hashtags"
	FieldMetaTitle       = "meta_title"
	FieldMetaDescription = "meta_description"
	FieldKeywords        = "keywords"
)

// SNSContentParser extracts title, description and hashtags from social copy.
var SNSContentParser = ContentParser{
	Rules: []FieldRule{
		{Field: FieldTitle, Prefixes: []string{"제목:", "Title:"}},
		{Field: FieldDescription, Prefixes: []string{"설명:", "Description:"}},
	},
	HashtagField: FieldHashtags,
}

// SEOContentParser extracts storefront meta fields.
var SEOContentParser = ContentParser{
	Rules: []FieldRule{
		{Field: FieldMetaTitle, Prefixes: []string{"메타 타이틀:", "Meta Title:"}},
		{Field: FieldMetaDescription, Prefixes: []string{"메타 설명:", "Meta Description:"}},
		{Field: FieldKeywords, Prefixes: []string{"키워드:", "Keywords:"}},
	},
}
