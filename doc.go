// Package konfig 维护单个配置文件的内存快照，并通过轮询+防抖与磁盘保持同步。
//
// 核心特点：
//   - Store 持有路径、编解码器(Provider)、当前快照以及一个 Monitor
//   - 编解码完全交给 Provider（见 provider 子包的 JSON/YAML/TOML 实现），Store 本身从不解析字节
//   - Monitor 周期性比较文件签名(Signature)：存在性、大小、修改时间、文件身份，可选内容哈希
//   - 通过Debounce（防抖）把一连串写入合并为一次回调，例如编辑器的"截断+重写"
//   - 可选使用 fsnotify 作为提前轮询的唤醒信号，是否变化仍以签名比较为准
//   - 日志使用 go.uber.org/zap，默认不输出
//
// 注意：
//   - 构造时校验一次 Provider.IsValid(path)，不匹配直接返回 ErrIncompatibleProvider
//   - TryLoad/TryGetFrom/TrySave 会吞掉所有错误（包括panic），失败只表现为快照没有更新；
//     依赖热重载又需要感知失败的调用方应使用 Load/GetFrom/Save
//   - 没有快照（从未设置，或 Load 读到的是空文档）时 Save 返回 ErrNoSnapshot，文件保持原样
//   - Close 先停止 Monitor，再做最后一次 Save，两步都会执行
//
// 推荐使用方式：
//  1. 配置 Config（Path、Provider，可选 OnChange/Debounce 等）
//  2. 通过 New 创建 Store（Monitor 随之启动）
//  3. 调用 Load 读取快照，之后通过 Get 读取
//  4. 文件变化稳定后 OnChange 被调用（默认 TryLoad）
//  5. 调用 Close 结束监控并写回
//
// 并发安全：
//   - 快照的替换与读取由 sync.RWMutex 保护，Get 不会看到半更新的快照
//   - 对文件的读写由另一把互斥锁串行化，Monitor 触发的重载与调用方的 Save 不会交错
//   - 轮询循环是严格顺序的：回调在轮询goroutine里执行，慢回调会推迟下一次检测
//   - Close 返回后不会再有回调；不要在 OnChange 里调用 Close
package konfig
