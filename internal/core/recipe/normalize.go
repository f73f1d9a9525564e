package recipe

import (
	"regexp"
	"strings"
)

var lineBreakPattern = regexp.MustCompile(`\r\n|\r|\n`)

// nutritionKeyMap 營養欄位名稱對照，其餘欄位原樣保留
var nutritionKeyMap = map[string]string{
	"protein":       "proteinContent",
	"fat":           "fatContent",
	"saturatedFat":  "saturatedFatContent",
	"transFat":      "transFatContent",
	"carbohydrates": "carbohydrateContent",
	"carbs":         "carbohydrateContent",
	"sugar":         "sugarContent",
	"sugars":        "sugarContent",
	"fiber":         "fiberContent",
	"sodium":        "sodiumContent",
	"cholesterol":   "cholesterolContent",
}

// NormalizeList 將食材等清單欄位轉為字串序列
//
//	nil      -> []
//	"a"      -> ["a"]
//	[...]    -> 每個元素經 listItemText 轉換，空字串濾除
//	{...}    -> 當作單一元素處理
func NormalizeList(v interface{}) []string {
	return normalizeList(v, ingredientText)
}

// NormalizeInstructions 將步驟欄位轉為字串序列
// 單一字串依換行切成多個步驟，其餘型態與 NormalizeList 相同
func NormalizeInstructions(v interface{}) []string {
	if s, ok := v.(string); ok {
		return splitLines(s)
	}
	return normalizeList(v, instructionText)
}

func normalizeList(v interface{}, text func(interface{}) string) []string {
	out := []string{}
	switch shapeOf(v) {
	case shapeAbsent:
		return out
	case shapeArray:
		items, _ := asArray(v)
		for _, item := range items {
			out = appendItem(out, item, text)
		}
		return out
	default:
		return appendItem(out, v, text)
	}
}

// appendItem 加入單一元素；HowToSection 會展開其 itemListElement
func appendItem(out []string, item interface{}, text func(interface{}) string) []string {
	if isSection(item) {
		return append(out, normalizeList(field(item, "itemListElement"), text)...)
	}
	if s := text(item); s != "" {
		out = append(out, s)
	}
	return out
}

func isSection(v interface{}) bool {
	return shapeOf(v) == shapeObject &&
		declaresType(v, "HowToSection") &&
		hasField(v, "itemListElement")
}

// ingredientText 食材元素：字串原樣、物件取 name 再取 text、其餘轉字串
func ingredientText(v interface{}) string {
	if shapeOf(v) == shapeObject {
		if hasField(v, "name") {
			return stringify(field(v, "name"))
		}
		if hasField(v, "text") {
			return stringify(field(v, "text"))
		}
	}
	return stringify(v)
}

// instructionText 步驟元素：HowToStep 的 name 通常只是標題，所以先取 text
func instructionText(v interface{}) string {
	if shapeOf(v) == shapeObject {
		if hasField(v, "text") {
			return stringify(field(v, "text"))
		}
		if hasField(v, "name") {
			return stringify(field(v, "name"))
		}
	}
	return stringify(v)
}

func splitLines(s string) []string {
	out := []string{}
	for _, line := range lineBreakPattern.Split(s, -1) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// NormalizeImage 圖片欄位取單一網址：陣列取第一個、物件取 url
func NormalizeImage(v interface{}) string {
	switch shapeOf(v) {
	case shapeString:
		return strings.TrimSpace(v.(string))
	case shapeArray:
		return NormalizeImage(first(v))
	case shapeObject:
		return NormalizeImage(field(v, "url"))
	default:
		return ""
	}
}

// NormalizeAuthor 作者：物件取 name，多位作者以 ", " 串接
func NormalizeAuthor(v interface{}) string {
	switch shapeOf(v) {
	case shapeObject:
		if hasField(v, "name") {
			return stringify(field(v, "name"))
		}
		return stringify(v)
	case shapeArray:
		items, _ := asArray(v)
		names := make([]string, 0, len(items))
		for _, item := range items {
			if name := NormalizeAuthor(item); name != "" {
				names = append(names, name)
			}
		}
		return strings.Join(names, ", ")
	default:
		return stringify(v)
	}
}

// NormalizeYield 份量：陣列取第一個元素
func NormalizeYield(v interface{}) string {
	if shapeOf(v) == shapeArray {
		return stringify(first(v))
	}
	return stringify(v)
}

// NormalizeKeywords 關鍵字串接為單一字串；secondary（如 tags）附加在後
func NormalizeKeywords(primary, secondary interface{}) string {
	keywords := keywordText(primary)
	extra := keywordText(secondary)
	switch {
	case extra == "":
		return keywords
	case keywords == "":
		return extra
	default:
		return keywords + ", " + extra
	}
}

func keywordText(v interface{}) string {
	if shapeOf(v) != shapeArray {
		return stringify(v)
	}
	items, _ := asArray(v)
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s := stringify(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// NormalizeNutrition 營養資訊物件，依 nutritionKeyMap 改名；非物件回傳 nil
// 已有標準名稱時不會被別名覆蓋
func NormalizeNutrition(v interface{}) Nutrition {
	obj, ok := asObject(v)
	if !ok || len(obj) == 0 {
		return nil
	}
	out := make(Nutrition, len(obj))
	for key, value := range obj {
		if canonical, ok := nutritionKeyMap[key]; ok {
			if _, exists := obj[canonical]; exists {
				continue
			}
			key = canonical
		}
		out[key] = value
	}
	return out
}

// NormalizeRating 評分物件；ratingValue 無法解析時回傳 nil
// reviewCount 缺少時改用 ratingCount
func NormalizeRating(v interface{}) *AggregateRating {
	if shapeOf(v) == shapeArray {
		v = first(v)
	}
	if shapeOf(v) != shapeObject {
		return nil
	}
	value, ok := toFloat(field(v, "ratingValue"))
	if !ok {
		return nil
	}
	count, ok := toFloat(field(v, "reviewCount"))
	if !ok {
		count, _ = toFloat(field(v, "ratingCount"))
	}
	return &AggregateRating{RatingValue: value, ReviewCount: int(count)}
}

// NormalizeVideo 影片物件；沒有 contentUrl 時回傳 nil
func NormalizeVideo(v interface{}) *Video {
	if shapeOf(v) == shapeArray {
		v = first(v)
	}
	if shapeOf(v) != shapeObject {
		return nil
	}
	contentURL := stringify(field(v, "contentUrl"))
	if contentURL == "" {
		return nil
	}
	return &Video{ContentURL: contentURL, Name: stringify(field(v, "name"))}
}

// howToSteps 以 HowToStep 物件保存步驟
func howToSteps(instructions []string) []HowToStep {
	steps := make([]HowToStep, len(instructions))
	for i, text := range instructions {
		steps[i] = HowToStep{Type: "HowToStep", Text: text}
	}
	return steps
}
