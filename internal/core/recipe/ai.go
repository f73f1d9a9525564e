package recipe

import (
	"fmt"

	"recipe-clipper/internal/pkg/common"
)

// aiFieldAliases 模型常用的欄位名稱 -> schema.org 名稱
// 只在標準名稱不存在時套用
var aiFieldAliases = []struct {
	alias     string
	canonical string
}{
	{"title", "name"},
	{"image_url", "image"},
	{"ingredients", "recipeIngredient"},
	{"instructions", "recipeInstructions"},
	{"servings", "recipeYield"},
}

// ExtractFromAIEnvelope 從模型回應信封組裝食譜，無法組裝時回傳 nil
func ExtractFromAIEnvelope(envelope interface{}, url string) *Recipe {
	return ExtractFromAIEnvelopeResult(envelope, url).Recipe
}

// ExtractFromAIEnvelopeResult 與 ExtractFromAIEnvelope 相同，但保留失敗原因
//
// 信封格式：{"source": {"output": [{"content": [{"text": "<JSON>"}]}]}}
func ExtractFromAIEnvelopeResult(envelope interface{}, url string) Result {
	text, ok := envelopeText(envelope)
	if !ok {
		return reject(ReasonEnvelopeShape, "missing source.output[0].content[0].text")
	}

	payload, err := common.ParseJSONValue(text)
	if err != nil {
		return reject(ReasonPayloadParse, err.Error())
	}
	if payload == nil {
		return reject(ReasonNullPayload, "payload is null")
	}
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return reject(ReasonPayloadParse, fmt.Sprintf("payload is %T, want object", payload))
	}

	return assemble(applyAliases(obj), url)
}

// ParseAIEnvelope 解碼原始信封 JSON，結果交給 ExtractFromAIEnvelope
func ParseAIEnvelope(data []byte) (interface{}, error) {
	return common.ParseJSONValue(string(data))
}

// WrapEnvelope 將模型原始回應包成信封
func WrapEnvelope(response interface{}) map[string]interface{} {
	return map[string]interface{}{"source": response}
}

// envelopeText 沿著 source.output[0].content[0].text 取出文字，任一層缺少即失敗
func envelopeText(envelope interface{}) (string, bool) {
	source := field(envelope, "source")
	output := first(field(source, "output"))
	content := first(field(output, "content"))
	text, ok := field(content, "text").(string)
	return text, ok
}

// applyAliases 回傳套用別名後的新物件，不修改原物件
func applyAliases(obj map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for _, a := range aiFieldAliases {
		if out[a.canonical] != nil {
			continue
		}
		if v, ok := obj[a.alias]; ok && v != nil {
			out[a.canonical] = v
		}
	}
	return out
}
