// Package provider 提供 konfig.Provider 的几种常见格式实现。
//
// 每个 Provider 都是泛型的，类型参数 T 就是快照类型，既可以是
// map[string]any 这样的动态结构，也可以是调用方自己的配置结构体：
//
//	store, err := konfig.New(konfig.Config[map[string]any]{
//		Path:     "config.yml",
//		Provider: provider.YAML[map[string]any]{},
//	})
//
// 约定：
//   - IsValid 只看文件后缀（大小写不敏感），不读取内容
//   - 空文档（只有空白字符）反序列化为 T 的零值，即"没有快照"
//   - 解析失败返回的错误会被 Store 包装为 *konfig.ParseError
package provider
