package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/shuakami/konfig"
	"github.com/shuakami/konfig/provider"
)

type snapshot = map[string]any

// providers 按顺序尝试，第一个 IsValid 的胜出
var providers = []konfig.Provider[snapshot]{
	provider.JSON[snapshot]{Indent: "  "},
	provider.YAML[snapshot]{},
	provider.TOML[snapshot]{},
}

// selectProvider 根据文件后缀选择 Provider
func selectProvider(path string) (konfig.Provider[snapshot], error) {
	for _, p := range providers {
		if p.IsValid(path) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no format registered for %q", konfig.ErrIncompatibleProvider, filepath.Ext(path))
}

// openStore 打开 path 对应的 Store；onChange 为 nil 时使用默认的 TryLoad
func openStore(path string, flags *storeFlags, logger *zap.Logger, onChange func(*konfig.Store[snapshot])) (*konfig.Store[snapshot], error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	p, err := selectProvider(path)
	if err != nil {
		return nil, err
	}
	return konfig.New(konfig.Config[snapshot]{
		Path:         path,
		Provider:     p,
		OnChange:     onChange,
		PollInterval: flags.interval,
		Debounce:     flags.debounce,
		Notify:       flags.notify,
		Checksum:     flags.checksum,
		LockFile:     flags.lock,
		Logger:       logger,
	})
}
