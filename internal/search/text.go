package search

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// 小写的常见 HTML 元素。泛型参数（List<T>、Map<String, Integer>）不会命中
	markupTagPattern  = regexp.MustCompile(`<(p|div|span|a|b|i|u|em|strong|small|code|pre|h[1-6]|ul|ol|li|dl|dt|dd|table|thead|tbody|tr|td|th|blockquote|section|article|header|footer|nav|main|aside|html|body|head|title|label|font|center)(?:\s[^<>]*)?>`)
	voidTagPattern    = regexp.MustCompile(`<(?:br|hr)\s*/?>`)
	whitespacePattern = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

const codeFence = "```"

// looksLikeHTML 至少出现一对已知元素的开闭标签，或 <br>/<hr>，且不含代码块
func looksLikeHTML(s string) bool {
	if strings.Contains(s, codeFence) {
		return false
	}
	if voidTagPattern.MatchString(s) {
		return true
	}
	for _, m := range markupTagPattern.FindAllStringSubmatch(s, -1) {
		if strings.Contains(s, "</"+m[1]+">") {
			return true
		}
	}
	return false
}

// CleanText 去掉内容中的 HTML 标记并压缩空白。不像 HTML 的文本（代码、markdown）只做首尾裁剪
func CleanText(s string) string {
	if !looksLikeHTML(s) {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(voidTagPattern.ReplaceAllString(s, "\n")))
	if err != nil {
		return strings.TrimSpace(s)
	}
	doc.Find("script, style, noscript").Remove()

	text := doc.Text()
	text = whitespacePattern.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
