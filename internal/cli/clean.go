package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"runepkg/internal/app"
)

func newCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [package]",
		Short: "Remove build working directories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runClean(cmd.Context(), cmd, name)
		},
	}
}

func runClean(ctx context.Context, cmd *cobra.Command, name string) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	if err := service.Clean(ctx, app.CleanRequest{Name: name}); err != nil {
		return err
	}
	if name == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", service.BuildDir)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", name)
	return nil
}
