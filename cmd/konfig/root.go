package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// storeFlags 是各子命令共用的 Store 配置
type storeFlags struct {
	interval time.Duration
	debounce time.Duration
	notify   bool
	checksum bool
	lock     bool
	verbose  bool
}

func newRootCommand(out io.Writer) *cobra.Command {
	flags := &storeFlags{}

	rootCmd := &cobra.Command{
		Use:   "konfig",
		Short: "Inspect and maintain watched configuration files",
		Long: `konfig loads a JSON, YAML or TOML configuration file into memory,
keeps it in sync with the file on disk and writes it back on exit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetOut(out)

	pf := rootCmd.PersistentFlags()
	pf.DurationVar(&flags.interval, "interval", 50*time.Millisecond, "file polling interval")
	pf.DurationVar(&flags.debounce, "debounce", 5*time.Second, "quiet period before a change is reloaded")
	pf.BoolVar(&flags.notify, "notify", false, "use filesystem notifications to poll early")
	pf.BoolVar(&flags.checksum, "checksum", false, "include a content hash in change detection")
	pf.BoolVar(&flags.lock, "lock", false, "hold <path>.lock while reading or writing the file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newWatchCommand(flags),
		newFmtCommand(flags),
		newImportCommand(flags),
	)
	return rootCmd
}

// newLogger 构造命令行使用的日志：默认只输出警告及以上，--verbose 输出调试日志
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
