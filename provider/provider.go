package provider

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// hasExt 判断 path 的后缀是否属于 exts 之一
func hasExt(path string, exts ...string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// readDocument 读取整个输入；ok=false 表示空文档
func readDocument(r io.Reader) (data []byte, ok bool, err error) {
	data, err = io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, nil
	}
	return data, true, nil
}
