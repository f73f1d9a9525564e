package recipe

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// shape 原始 JSON 值的型態
type shape int

const (
	shapeAbsent shape = iota
	shapeString
	shapeNumber
	shapeBool
	shapeArray
	shapeObject
	shapeOther
)

// shapeOf 判斷解碼後 JSON 值屬於哪一種型態
func shapeOf(v interface{}) shape {
	switch v.(type) {
	case nil:
		return shapeAbsent
	case string:
		return shapeString
	case float64, float32, int, int64, int32, json.Number:
		return shapeNumber
	case bool:
		return shapeBool
	case []interface{}, []string, []map[string]interface{}, []HowToStep:
		return shapeArray
	case map[string]interface{}, Nutrition, map[string]string:
		return shapeObject
	default:
		return shapeOther
	}
}

// formatNumber 數字轉字串，整數不帶小數點
func formatNumber(v interface{}) string {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return ""
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case json.Number:
		return n.String()
	}
	return ""
}

// toFloat 數字或數字字串轉 float64
func toFloat(v interface{}) (float64, bool) {
	switch shapeOf(v) {
	case shapeNumber:
		f, err := strconv.ParseFloat(formatNumber(v), 64)
		return f, err == nil
	case shapeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.(string)), 64)
		return f, err == nil
	}
	return 0, false
}

// stringify 將任意值轉為字串：字串去除前後空白、數字與布林轉文字、
// 物件與陣列以 JSON 表示
func stringify(v interface{}) string {
	switch shapeOf(v) {
	case shapeAbsent:
		return ""
	case shapeString:
		return strings.TrimSpace(v.(string))
	case shapeNumber:
		return formatNumber(v)
	case shapeBool:
		return strconv.FormatBool(v.(bool))
	case shapeArray, shapeObject:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// asArray 將陣列型態統一為 []interface{}，包含正規化後的 []string 等輸出型態
func asArray(v interface{}) ([]interface{}, bool) {
	switch arr := v.(type) {
	case []interface{}:
		return arr, true
	case []string:
		out := make([]interface{}, len(arr))
		for i, s := range arr {
			out[i] = s
		}
		return out, true
	case []map[string]interface{}:
		out := make([]interface{}, len(arr))
		for i, m := range arr {
			out[i] = m
		}
		return out, true
	case []HowToStep:
		out := make([]interface{}, len(arr))
		for i, step := range arr {
			out[i] = map[string]interface{}{typeKey: step.Type, "text": step.Text}
		}
		return out, true
	}
	return nil, false
}

// asObject 將物件型態統一為 map[string]interface{}，包含 Nutrition
func asObject(v interface{}) (map[string]interface{}, bool) {
	switch obj := v.(type) {
	case map[string]interface{}:
		return obj, true
	case Nutrition:
		return map[string]interface{}(obj), true
	case map[string]string:
		out := make(map[string]interface{}, len(obj))
		for k, s := range obj {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// field 取物件的欄位，非物件回傳 nil
func field(v interface{}, key string) interface{} {
	obj, ok := asObject(v)
	if !ok {
		return nil
	}
	return obj[key]
}

// hasField 物件是否帶有非 null 的欄位
func hasField(v interface{}, key string) bool {
	return field(v, key) != nil
}

// first 陣列的第一個元素，空陣列回傳 nil
func first(v interface{}) interface{} {
	arr, ok := asArray(v)
	if !ok || len(arr) == 0 {
		return nil
	}
	return arr[0]
}
