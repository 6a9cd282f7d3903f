package konfig

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatibleProvider 表示 Provider 无法处理给定路径（例如后缀不匹配）
	ErrIncompatibleProvider = errors.New("provider cannot handle path")

	// ErrClosed 表示 Store 已经关闭
	ErrClosed = errors.New("store is closed")

	// ErrNoSnapshot 表示还没有任何快照可以保存
	ErrNoSnapshot = errors.New("no snapshot to save")

	// ErrMonitorStopped 表示 Monitor 已经停止，不能再次启动
	ErrMonitorStopped = errors.New("monitor is stopped")
)

// ParseError 包装 Provider.Deserialize 返回的错误
//
// 与文件读写错误（*fs.PathError）区分开，调用方可通过 errors.As 判断
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SerializeError 包装 Provider.Serialize 返回的错误
type SerializeError struct {
	Path string
	Err  error
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("serialize %s: %v", e.Path, e.Err)
}

func (e *SerializeError) Unwrap() error { return e.Err }
