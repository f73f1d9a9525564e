package recipe

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"recipe-clipper/internal/pkg/common"
)

const structuredDataType = "application/ld+json"

// Scan 結構化資料掃描結果
type Scan struct {
	// Values 成功解析的 JSON 值，陣列會攤平成多個元素
	Values []interface{}
	// Blocks 找到的區塊數（含解析失敗的）
	Blocks int
	// Errors 每個解析失敗區塊的錯誤
	Errors []error
}

// LocateStructuredData 取出頁面中所有可解析的 JSON-LD 值
func LocateStructuredData(markup string) []interface{} {
	return ScanStructuredData(markup).Values
}

// ScanStructuredData 掃描頁面中的 JSON-LD 區塊
// 單一區塊解析失敗只記錄錯誤，不會中斷掃描
func ScanStructuredData(markup string) Scan {
	scan := Scan{Values: []interface{}{}}
	z := html.NewTokenizer(strings.NewReader(markup))

	inBlock := false
	var text strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				scan.Errors = append(scan.Errors, z.Err())
			}
			if inBlock {
				scan.addBlock(text.String())
			}
			return scan
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if atom.Lookup(name) != atom.Script {
				continue
			}
			inBlock = hasAttr && isStructuredDataScript(z)
			text.Reset()
		case html.TextToken:
			if inBlock {
				text.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Script && inBlock {
				scan.addBlock(text.String())
				inBlock = false
			}
		}
	}
}

func (s *Scan) addBlock(raw string) {
	s.Blocks++
	payload := unwrapBlock(raw)
	if payload == "" {
		s.Errors = append(s.Errors, fmt.Errorf("block %d: empty payload", s.Blocks))
		return
	}
	v, err := common.ParseJSONValue(payload)
	if err != nil {
		s.Errors = append(s.Errors, fmt.Errorf("block %d: %w", s.Blocks, err))
		return
	}
	if arr, ok := v.([]interface{}); ok {
		s.Values = append(s.Values, arr...)
		return
	}
	if v != nil {
		s.Values = append(s.Values, v)
	}
}

// isStructuredDataScript type 屬性是否為 application/ld+json（不分大小寫，可帶參數）
func isStructuredDataScript(z *html.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		if strings.EqualFold(string(key), "type") {
			mediaType := string(val)
			if i := strings.Index(mediaType, ";"); i >= 0 {
				mediaType = mediaType[:i]
			}
			return strings.EqualFold(strings.TrimSpace(mediaType), structuredDataType)
		}
		if !more {
			return false
		}
	}
}

// unwrapBlock 去除部分網站包在外層的 HTML 註解或 CDATA
func unwrapBlock(raw string) string {
	s := strings.TrimSpace(raw)
	for _, pair := range [][2]string{
		{"<!--", "-->"},
		{"//<![CDATA[", "//]]>"},
		{"<![CDATA[", "]]>"},
	} {
		if strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			s = strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}

// PageText 將頁面轉為純文字，略過 script、style 等不可見內容
// maxRunes 大於 0 時截斷
func PageText(markup string, maxRunes int) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			text := common.CollapseSpaces(b.String())
			if maxRunes > 0 {
				text = common.Truncate(text, maxRunes)
			}
			return text
		case html.StartTagToken:
			if isHiddenTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isHiddenTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func isHiddenTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg:
		return true
	}
	return false
}
