package konfig

import "io/fs"

const defaultPerm fs.FileMode = 0o644

// OpenOption 调整 Load/Save 打开文件的方式
type OpenOption func(*openConfig)

type openConfig struct {
	perm fs.FileMode
	flag int
	sync bool
}

// WithPerm 设置新建文件时使用的权限, 默认 0644
func WithPerm(perm fs.FileMode) OpenOption {
	return func(c *openConfig) {
		c.perm = perm
	}
}

// WithFlag 追加 os.OpenFile 的标志位（如 os.O_SYNC）
func WithFlag(flag int) OpenOption {
	return func(c *openConfig) {
		c.flag |= flag
	}
}

// WithSync 在 Save 写入后调用 fsync
func WithSync() OpenOption {
	return func(c *openConfig) {
		c.sync = true
	}
}

func resolveOpenOptions(opts []OpenOption) openConfig {
	c := openConfig{perm: defaultPerm}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}
