// Package sanitize は利用者が投稿したテキストからマークアップを取り除く。
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy はすべてのHTMLタグと属性を取り除く。
var strictPolicy = bluemonday.StrictPolicy()

// Text はHTMLタグを取り除いたプレーンテキストを返す。
// bluemondayがエスケープした文字実体参照は元に戻す。
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}

// OptionalText はnilでなければ Text を適用する。
func OptionalText(input *string) *string {
	if input == nil {
		return nil
	}
	s := Text(*input)
	return &s
}
