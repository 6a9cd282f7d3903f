package provider

import (
	"io"

	"gopkg.in/yaml.v3"
)

const defaultYAMLIndent = 2

// YAML 使用 gopkg.in/yaml.v3 编解码 .yml/.yaml 文件，输出块风格
//
// Indent <= 0 时使用 2 个空格缩进
type YAML[T any] struct {
	Indent int
}

func (YAML[T]) IsValid(path string) bool {
	return hasExt(path, ".yml", ".yaml")
}

func (YAML[T]) Deserialize(r io.Reader) (T, error) {
	var v T
	data, ok, err := readDocument(r)
	if err != nil || !ok {
		return v, err
	}
	if err := yaml.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (p YAML[T]) Serialize(w io.Writer, v T) error {
	indent := p.Indent
	if indent <= 0 {
		indent = defaultYAMLIndent
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(indent)
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
