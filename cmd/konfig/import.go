package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newImportCommand(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <src> <dst>",
		Short: "Import a configuration file into another, converting formats by suffix",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			src, dst := args[0], args[1]

			logger, err := newLogger(flags.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			srcProvider, err := selectProvider(src)
			if err != nil {
				return err
			}
			store, err := openStore(dst, flags, logger, nil)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, store.Close()) }()

			f, err := os.Open(src)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", src, err)
			}
			defer f.Close()

			decoded, err := srcProvider.Deserialize(f)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", src, err)
			}

			// 用目标格式重新编码，再走 GetFrom 的"导入并持久化"路径
			dstProvider, err := selectProvider(dst)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := dstProvider.Serialize(&buf, decoded); err != nil {
				return fmt.Errorf("failed to encode %s: %w", dst, err)
			}
			if _, err := store.GetFrom(&buf); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %s into %s\n", src, store.Path())
			return nil
		},
	}
}
