package konfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultInterval = 50 * time.Millisecond
	defaultDebounce = 5 * time.Second
)

// MonitorConfig 用于配置 Monitor
//
// Path：要监控的单个文件路径（可以暂时不存在）
// Interval：轮询间隔, 默认 50ms
// Debounce：防抖窗口，最后一次变更之后需静默这么久才触发回调, 默认 5s
// Notify：是否额外使用 fsnotify 作为"提前轮询"的唤醒信号
// Checksum：签名中是否包含内容哈希(SHA-256)
// Logger：日志, 默认 zap.NewNop()
type MonitorConfig struct {
	Path     string
	Interval time.Duration
	Debounce time.Duration
	Notify   bool
	Checksum bool
	Logger   *zap.Logger
}

// MonitorStats 是 Monitor 的运行计数
//
// Polls：完成的轮询次数
// Changes：检测到的签名变化次数
// Coalesced：在防抖窗口内被合并掉的变化次数
// Callbacks：回调触发次数
// Errors：轮询失败或回调panic的次数
type MonitorStats struct {
	Polls     uint64
	Changes   uint64
	Coalesced uint64
	Callbacks uint64
	Errors    uint64
}

// Monitor 以轮询+签名比较的方式监控单个文件，并对变化做防抖
//
// 轮询、防抖计时、回调全部在同一个后台goroutine中顺序执行：
// 一轮轮询（包括可能的回调）完成后才会开始下一轮，
// 所以慢回调会推迟后续的变化检测
type Monitor struct {
	cfg      MonitorConfig
	id       string
	absPath  string
	onChange func()
	logger   *zap.Logger

	mu        sync.Mutex
	started   bool
	stopped   bool
	fsWatcher *fsnotify.Watcher

	done chan struct{}
	wake chan struct{}
	wg   sync.WaitGroup

	polls     atomic.Uint64
	changes   atomic.Uint64
	coalesced atomic.Uint64
	callbacks atomic.Uint64
	errors    atomic.Uint64
}

// NewMonitor 根据给定配置创建一个新的 Monitor
//
// 若 cfg.Interval <= 0，则默认使用 50ms
// 若 cfg.Debounce <= 0，则默认使用 5s
func NewMonitor(cfg MonitorConfig, onChange func()) (*Monitor, error) {
	if cfg.Path == "" {
		return nil, errors.New("monitor path is empty")
	}
	if onChange == nil {
		return nil, errors.New("monitor callback is nil")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve monitor path %s: %w", cfg.Path, err)
	}

	id := uuid.NewString()
	return &Monitor{
		cfg:      cfg,
		id:       id,
		absPath:  abs,
		onChange: onChange,
		logger:   cfg.Logger.With(zap.String("path", cfg.Path), zap.String("monitor_id", id)),
		done:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}, nil
}

// ID 返回 Monitor 的唯一标识（出现在日志字段 monitor_id 中）
func (m *Monitor) ID() string {
	return m.id
}

// Start 启动后台轮询
//
// 重复调用是安全的；Stop 之后再调用返回 ErrMonitorStopped
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return ErrMonitorStopped
	}
	if m.started {
		return nil
	}
	m.started = true

	// 读不到初始签名时以"不存在"为基线，恢复可读后按变化处理
	last, err := ReadSignature(m.cfg.Path, m.cfg.Checksum)
	if err != nil {
		last = Signature{}
		m.errors.Add(1)
		m.logger.Warn("initial signature unavailable", zap.Error(err))
	}

	if m.cfg.Notify {
		m.startNotify()
	}

	m.wg.Add(1)
	go m.run(last)

	m.logger.Debug("monitor started",
		zap.Duration("interval", m.cfg.Interval),
		zap.Duration("debounce", m.cfg.Debounce))
	return nil
}

// Stop 停止轮询并等待后台goroutine退出
//
// Stop 返回之后不会再有任何回调被触发。若回调正在执行，Stop 会等它结束，
// 所以不要在回调里调用 Stop。重复调用是安全的
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	fsw := m.fsWatcher
	m.mu.Unlock()

	close(m.done)

	var err error
	if fsw != nil {
		if cerr := fsw.Close(); cerr != nil {
			err = fmt.Errorf("failed to close fsnotify watcher: %w", cerr)
		}
	}
	m.wg.Wait()

	m.logger.Debug("monitor stopped")
	return err
}

// Stats 返回当前计数
func (m *Monitor) Stats() MonitorStats {
	return MonitorStats{
		Polls:     m.polls.Load(),
		Changes:   m.changes.Load(),
		Coalesced: m.coalesced.Load(),
		Callbacks: m.callbacks.Load(),
		Errors:    m.errors.Load(),
	}
}

// run 是唯一的轮询goroutine
func (m *Monitor) run(last Signature) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	timer := time.NewTimer(m.cfg.Debounce)
	stopTimer(timer)
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-m.done:
			return
		case <-timer.C:
			pending = false
			// done 与 timer 同时就绪时 select 是随机的
			if m.stopping() {
				return
			}
			m.fire()
			continue
		case <-ticker.C:
		case <-m.wake:
		}

		m.polls.Add(1)
		current, err := ReadSignature(m.cfg.Path, m.cfg.Checksum)
		if err != nil {
			m.errors.Add(1)
			m.logger.Warn("poll failed, retrying next interval", zap.Error(err))
			continue
		}
		if current.Equal(last) {
			continue
		}
		last = current

		m.changes.Add(1)
		if pending {
			m.coalesced.Add(1)
			stopTimer(timer)
		}
		timer.Reset(m.cfg.Debounce)
		pending = true

		m.logger.Debug("change detected",
			zap.Bool("exists", current.Exists),
			zap.Int64("size", current.Size))
	}
}

// fire 执行回调；回调panic会被记录，轮询继续
func (m *Monitor) fire() {
	defer func() {
		if r := recover(); r != nil {
			m.errors.Add(1)
			m.logger.Error("change callback panicked", zap.Any("panic", r))
		}
	}()
	m.callbacks.Add(1)
	m.logger.Debug("change stabilized")
	m.onChange()
}

func (m *Monitor) stopping() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// startNotify 监听父目录的 fsnotify 事件，命中目标文件时唤醒一次轮询
//
// 事件本身不代表"有变化"，是否变化仍由签名比较决定。调用时已持有 m.mu
func (m *Monitor) startNotify() {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		m.logger.Warn("fsnotify unavailable, polling only", zap.Error(err))
		return
	}
	dir := filepath.Dir(m.absPath)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		m.logger.Warn("cannot watch parent directory, polling only", zap.String("dir", dir), zap.Error(err))
		return
	}
	m.fsWatcher = fsw

	m.wg.Add(1)
	go m.forward(fsw)
}

// forward 把目标文件相关的 fsnotify 事件转换成唤醒信号
func (m *Monitor) forward(fsw *fsnotify.Watcher) {
	defer m.wg.Done()
	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != m.absPath {
				continue
			}
			select {
			case m.wake <- struct{}{}:
			default:
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			m.logger.Warn("fsnotify error", zap.Error(err))
		case <-m.done:
			return
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
