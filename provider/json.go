package provider

import (
	"encoding/json"
	"io"
)

// JSON 使用 encoding/json 编解码 .json 文件
//
// Indent 为空时输出紧凑格式
type JSON[T any] struct {
	Indent string
}

func (JSON[T]) IsValid(path string) bool {
	return hasExt(path, ".json")
}

func (JSON[T]) Deserialize(r io.Reader) (T, error) {
	var v T
	data, ok, err := readDocument(r)
	if err != nil || !ok {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (p JSON[T]) Serialize(w io.Writer, v T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if p.Indent != "" {
		enc.SetIndent("", p.Indent)
	}
	return enc.Encode(v)
}
