package common

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// ParseJSON 解析 JSON 字符串到結構體
func ParseJSON(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v, false)
}

// ParseJSONBytes 解析 JSON 位元組切片到結構體
func ParseJSONBytes(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v, false)
}

// ParseJSONValue 解析任意 JSON 值，數字一律為 float64
// 物件為 map[string]interface{}，陣列為 []interface{}，null 回傳 nil
func ParseJSONValue(data string) (interface{}, error) {
	var v interface{}
	if err := decodeJSON(strings.NewReader(data), &v, true); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeJSON(r io.Reader, v interface{}, floatNumbers bool) error {
	dec := json.NewDecoder(r)
	if !floatNumbers {
		dec.UseNumber()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	_, err := dec.Token()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("unexpected extra JSON data")
}

// ToJSON 將結構體轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MarshalJSON 將結構體轉換為 JSON 位元組
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
