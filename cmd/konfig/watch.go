package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/shuakami/konfig"
)

func newWatchCommand(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <path>",
		Short: "Print a configuration file and reprint it after every change",
		Long: `watch loads the file, prints it as JSON and prints it again each time a
change on disk has settled for the debounce window. Interrupt to stop; the
current snapshot is written back to the file on exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(flags.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			printer := &snapshotPrinter{out: cmd.OutOrStdout()}
			store, err := openStore(args[0], flags, logger, func(st *konfig.Store[snapshot]) {
				printer.print("reloaded", st.Path(), st.TryLoad())
			})
			if err != nil {
				return err
			}

			current, err := store.Load()
			if err != nil {
				_ = store.Close()
				return err
			}
			printer.print("loaded", store.Path(), current)

			<-cmd.Context().Done()
			return store.Close()
		},
	}
}

// snapshotPrinter 串行化输出，回调在 Monitor 的goroutine中执行
type snapshotPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *snapshotPrinter) print(label, path string, s snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "# %s %s\n", label, path)
	if err := providers[0].Serialize(p.out, s); err != nil {
		fmt.Fprintf(p.out, "# cannot print snapshot: %v\n", err)
	}
}
