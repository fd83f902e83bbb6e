// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// order matters: the index of the match picks the response language
var supportedLanguages = []language.Tag{language.English, language.Korean}

var languageMatcher = language.NewMatcher(supportedLanguages)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", resolveLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// resolveLanguage maps an Accept-Language header such as
// "ko-KR,ko;q=0.9,en;q=0.8" onto "en" or "ko".
func resolveLanguage(header string) string {
	if header == "" {
		return "en"
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "en"
	}

	_, index, confidence := languageMatcher.Match(tags...)
	if confidence == language.No || index == 0 {
		return "en"
	}
	return "ko"
}
