package konfig

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Provider 负责某一种格式的编解码，S 是它产出的快照类型
//
// IsValid：仅根据路径形状（如后缀）判断能否处理，必须无副作用
// Deserialize：从字节流读出完整快照
// Serialize：把完整快照写入字节流
type Provider[S any] interface {
	IsValid(path string) bool
	Deserialize(r io.Reader) (S, error)
	Serialize(w io.Writer, snapshot S) error
}

// Config 用于配置 Store
//
// Path：后端文件路径，可以暂时不存在
// Provider：编解码器，构造时校验一次 Provider.IsValid(Path)
// OnChange：变化稳定后的回调，在 Monitor 的goroutine中执行；为 nil 时使用 (*Store).TryLoad
// PollInterval：轮询间隔, 默认 50ms
// Debounce：防抖窗口, 默认 5s
// Notify：是否启用 fsnotify 唤醒
// Checksum：签名中是否包含内容哈希
// LockFile：是否在读写时额外持有 "<Path>.lock" 上的跨进程文件锁
// Logger：日志, 默认 zap.NewNop()
type Config[S any] struct {
	Path         string
	Provider     Provider[S]
	OnChange     func(*Store[S])
	PollInterval time.Duration
	Debounce     time.Duration
	Notify       bool
	Checksum     bool
	LockFile     bool
	Logger       *zap.Logger
}

// Store 持有单个配置文件的内存快照，并通过 Monitor 跟随磁盘上的变化
//
// mu：保护 snapshot/loaded/closed，Get 永远看不到"写了一半"的快照
// fileMu：串行化对后端文件的读写；加锁顺序固定为 fileMu -> mu
//
// 状态：New 成功即为 Active（Monitor 已启动）；Close 之后为 Closed，
// Load/Save/GetFrom/Create 返回 ErrClosed，Get 仍返回最后的快照
type Store[S any] struct {
	path     string
	provider Provider[S]
	onChange func(*Store[S])
	monitor  *Monitor
	logger   *zap.Logger

	mu       sync.RWMutex
	snapshot S
	loaded   bool
	closed   bool

	fileMu sync.Mutex
	lock   *flock.Flock
}

// New 校验 Provider 与路径是否匹配，创建 Store 并启动 Monitor
//
// 不匹配时返回包装了 ErrIncompatibleProvider 的错误，不会产生 Store
func New[S any](cfg Config[S]) (*Store[S], error) {
	if cfg.Path == "" {
		return nil, errors.New("store path is empty")
	}
	if cfg.Provider == nil {
		return nil, errors.New("store provider is nil")
	}
	if !cfg.Provider.IsValid(cfg.Path) {
		return nil, fmt.Errorf("%w: %T cannot parse %s", ErrIncompatibleProvider, cfg.Provider, filepath.Base(cfg.Path))
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Store[S]{
		path:     cfg.Path,
		provider: cfg.Provider,
		onChange: cfg.OnChange,
		logger:   cfg.Logger.With(zap.String("path", cfg.Path)),
	}
	if s.onChange == nil {
		s.onChange = func(st *Store[S]) { st.TryLoad() }
	}
	if cfg.LockFile {
		s.lock = flock.New(cfg.Path + ".lock")
	}

	monitor, err := NewMonitor(MonitorConfig{
		Path:     cfg.Path,
		Interval: cfg.PollInterval,
		Debounce: cfg.Debounce,
		Notify:   cfg.Notify,
		Checksum: cfg.Checksum,
		Logger:   cfg.Logger,
	}, func() { s.onChange(s) })
	if err != nil {
		return nil, err
	}
	s.monitor = monitor
	if err := monitor.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path 返回后端文件路径
func (s *Store[S]) Path() string {
	return s.path
}

// Monitor 返回与 Store 绑定的 Monitor
func (s *Store[S]) Monitor() *Monitor {
	return s.monitor
}

// Create 确保文件及其父目录存在；幂等，不会截断已有内容，也不修改快照
func (s *Store[S]) Create() error {
	if s.isClosed() {
		return ErrClosed
	}
	unlock, err := s.lockFiles()
	if err != nil {
		return err
	}
	defer unlock()
	return s.create(defaultPerm)
}

// Load 先 Create，再读取并反序列化文件，替换当前快照并返回
func (s *Store[S]) Load(opts ...OpenOption) (S, error) {
	var zero S
	if s.isClosed() {
		return zero, ErrClosed
	}
	oc := resolveOpenOptions(opts)

	unlock, err := s.lockFiles()
	if err != nil {
		return zero, err
	}
	defer unlock()

	if err := s.create(oc.perm); err != nil {
		return zero, err
	}
	f, err := os.OpenFile(s.path, os.O_RDONLY|oc.flag, 0)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	snapshot, content, err := s.decode(f)
	if err != nil {
		return zero, err
	}
	// 空文档只清空快照，不算"有过快照"，Close 不会把它改写成 null
	s.replace(snapshot, content)

	s.logger.Debug("snapshot loaded", zap.Bool("empty", !content))
	return snapshot, nil
}

// GetFrom 从任意输入读取快照并立即写回后端文件
//
// 先写文件、成功后才替换内存快照，所以失败时内存快照保持不变
func (s *Store[S]) GetFrom(r io.Reader) (S, error) {
	var zero S
	if s.isClosed() {
		return zero, ErrClosed
	}

	snapshot, _, err := s.decode(r)
	if err != nil {
		return zero, err
	}

	unlock, err := s.lockFiles()
	if err != nil {
		return zero, err
	}
	defer unlock()

	if err := s.write(snapshot, true, openConfig{perm: defaultPerm}); err != nil {
		return zero, err
	}
	s.replace(snapshot, true)

	s.logger.Debug("snapshot imported")
	return snapshot, nil
}

// Save 把当前快照序列化后覆盖写入后端文件
//
// 从未设置过快照时返回 ErrNoSnapshot，文件保持原样；
// 序列化失败时文件同样保持原样
func (s *Store[S]) Save(opts ...OpenOption) error {
	if s.isClosed() {
		return ErrClosed
	}
	return s.save(resolveOpenOptions(opts))
}

// Get 返回当前快照，不做任何I/O
func (s *Store[S]) Get() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Set 替换当前快照（不写文件，需要持久化时再调用 Save）
func (s *Store[S]) Set(snapshot S) {
	s.replace(snapshot, true)
}

// Loaded 报告当前是否持有快照（Set/GetFrom 成功，或 Load 读到了非空文档）
func (s *Store[S]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// TryLoad 是 Load 的尽力而为版本：吞掉所有错误和panic，返回（可能未更新的）当前快照
//
// 失败只表现为快照"没有更新"，需要感知失败的调用方请使用 Load
func (s *Store[S]) TryLoad(opts ...OpenOption) S {
	err := guard(func() error {
		_, err := s.Load(opts...)
		return err
	})
	s.discard("load", err)
	return s.Get()
}

// TryGetFrom 是 GetFrom 的尽力而为版本
func (s *Store[S]) TryGetFrom(r io.Reader) S {
	err := guard(func() error {
		_, err := s.GetFrom(r)
		return err
	})
	s.discard("import", err)
	return s.Get()
}

// TrySave 是 Save 的尽力而为版本
func (s *Store[S]) TrySave(opts ...OpenOption) *Store[S] {
	err := guard(func() error {
		return s.Save(opts...)
	})
	s.discard("save", err)
	return s
}

// Close 停止 Monitor，然后做最后一次 Save
//
// 两步都会执行：停止 Monitor 失败不会跳过保存，两者的错误合并返回。
// 从未有过快照时没有内容可保存，不算错误。
// 重复调用返回 nil。不要在 OnChange 回调里调用 Close
func (s *Store[S]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var err error
	if stopErr := guard(s.monitor.Stop); stopErr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to stop monitor: %w", stopErr))
	}
	saveErr := guard(func() error { return s.save(openConfig{perm: defaultPerm}) })
	if saveErr != nil && !errors.Is(saveErr, ErrNoSnapshot) {
		err = multierr.Append(err, saveErr)
	}
	if err != nil {
		s.logger.Warn("store closed with errors", zap.Error(err))
	}
	return err
}

func (s *Store[S]) save(oc openConfig) error {
	unlock, err := s.lockFiles()
	if err != nil {
		return err
	}
	defer unlock()

	s.mu.RLock()
	snapshot, present := s.snapshot, s.loaded
	s.mu.RUnlock()

	if err := s.write(snapshot, present, oc); err != nil {
		return err
	}
	s.logger.Debug("snapshot saved")
	return nil
}

// lockFiles 获取 fileMu，启用 LockFile 时再获取跨进程文件锁
func (s *Store[S]) lockFiles() (func(), error) {
	s.fileMu.Lock()
	if s.lock == nil {
		return s.fileMu.Unlock, nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.fileMu.Unlock()
		return nil, fmt.Errorf("failed to create directory for %s: %w", s.path, err)
	}
	if err := s.lock.Lock(); err != nil {
		s.fileMu.Unlock()
		return nil, fmt.Errorf("failed to lock %s: %w", s.lock.Path(), err)
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release file lock", zap.Error(err))
		}
		s.fileMu.Unlock()
	}, nil
}

// write 序列化并覆盖写入文件，调用方需持有 fileMu
func (s *Store[S]) write(snapshot S, present bool, oc openConfig) error {
	if !present {
		return ErrNoSnapshot
	}
	var buf bytes.Buffer
	if err := s.provider.Serialize(&buf, snapshot); err != nil {
		return &SerializeError{Path: s.path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", s.path, err)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|oc.flag, oc.perm)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", s.path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	if oc.sync {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to sync %s: %w", s.path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.path, err)
	}
	return nil
}

// create 调用方需持有 fileMu
func (s *Store[S]) create(perm os.FileMode) error {
	if info, err := os.Stat(s.path); err == nil && info.Mode().IsRegular() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", s.path, err)
	}
	f, err := os.OpenFile(s.path, os.O_RDONLY|os.O_CREATE, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", s.path, err)
	}
	return f.Close()
}

func (s *Store[S]) replace(snapshot S, present bool) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.loaded = present
	s.mu.Unlock()
}

// decode 通过 Provider 反序列化 r
//
// 读取失败原样作为I/O错误返回，只有 Provider 自身的失败才是 *ParseError；
// content 表示输入是否含有非空白内容
func (s *Store[S]) decode(r io.Reader) (snapshot S, content bool, err error) {
	dr := &documentReader{r: r}
	snapshot, err = s.provider.Deserialize(bufio.NewReader(dr))
	if dr.err != nil {
		var zero S
		return zero, false, fmt.Errorf("failed to read %s: %w", s.path, dr.err)
	}
	if err != nil {
		var zero S
		return zero, false, &ParseError{Path: s.path, Err: err}
	}
	return snapshot, dr.content, nil
}

// documentReader 记录底层读取错误，以及是否读到过非空白字节
type documentReader struct {
	r       io.Reader
	err     error
	content bool
}

func (d *documentReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if !d.content && len(bytes.TrimSpace(p[:n])) > 0 {
		d.content = true
	}
	if err != nil && !errors.Is(err, io.EOF) && d.err == nil {
		d.err = err
	}
	return n, err
}

func (s *Store[S]) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store[S]) discard(op string, err error) {
	if err != nil {
		s.logger.Debug("best-effort "+op+" failed", zap.Error(err))
	}
}

// guard 执行 fn，并把panic转换为错误
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()
	return fn()
}
