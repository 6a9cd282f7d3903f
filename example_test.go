package konfig_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shuakami/konfig"
	"github.com/shuakami/konfig/provider"
)

// ExampleStore 展示最简使用场景
//
// 运行示例命令: go test -v -run=ExampleStore
func ExampleStore() {
	dir, err := os.MkdirTemp("", "konfig-example-")
	if err != nil {
		fmt.Println("Error creating temp dir:", err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"name":"demo"}`), 0o644); err != nil {
		fmt.Println("Error writing file:", err)
		return
	}

	// OnChange 为 nil 时，文件变化稳定后会自动 TryLoad
	store, err := konfig.New(konfig.Config[map[string]any]{
		Path:     path,
		Provider: provider.JSON[map[string]any]{},
		Debounce: 100 * time.Millisecond,
	})
	if err != nil {
		fmt.Println("Error creating store:", err)
		return
	}

	cfg, err := store.Load()
	if err != nil {
		fmt.Println("Error loading:", err)
		return
	}
	fmt.Println("name:", cfg["name"])

	// 修改快照并在 Close 时写回
	store.Set(map[string]any{"name": "renamed"})
	if err := store.Close(); err != nil {
		fmt.Println("Error closing:", err)
		return
	}

	data, _ := os.ReadFile(path)
	fmt.Print(string(data))

	// Output:
	// name: demo
	// {"name":"renamed"}
}

func ExampleNew_incompatibleProvider() {
	_, err := konfig.New(konfig.Config[map[string]any]{
		Path:     "settings.toml",
		Provider: provider.YAML[map[string]any]{},
	})
	fmt.Println(errors.Is(err, konfig.ErrIncompatibleProvider))

	// Output:
	// true
}
