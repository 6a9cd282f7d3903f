package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/shuakami/konfig"
)

func newFmtCommand(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fmt <path>",
		Short: "Rewrite a configuration file in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			logger, err := newLogger(flags.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, err := openStore(args[0], flags, logger, nil)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, store.Close()) }()

			if _, err := store.Load(); err != nil {
				return err
			}
			if err := store.Save(); errors.Is(err, konfig.ErrNoSnapshot) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is empty, nothing to format\n", store.Path())
				return nil
			} else if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "formatted %s\n", store.Path())
			return nil
		},
	}
}
