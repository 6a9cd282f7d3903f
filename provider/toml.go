package provider

import (
	"io"

	"github.com/BurntSushi/toml"
)

// TOML 使用 github.com/BurntSushi/toml 编解码 .toml 文件
//
// TOML 文档的顶层必须是表，所以 T 应为 map 或结构体。
// Indent 为空时使用编码器默认的两个空格
type TOML[T any] struct {
	Indent string
}

func (TOML[T]) IsValid(path string) bool {
	return hasExt(path, ".toml")
}

func (TOML[T]) Deserialize(r io.Reader) (T, error) {
	var v T
	data, ok, err := readDocument(r)
	if err != nil || !ok {
		return v, err
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (p TOML[T]) Serialize(w io.Writer, v T) error {
	enc := toml.NewEncoder(w)
	if p.Indent != "" {
		enc.Indent = p.Indent
	}
	return enc.Encode(v)
}
