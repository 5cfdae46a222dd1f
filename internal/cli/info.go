package cli

import (
	"context"

	"github.com/spf13/cobra"

	"runepkg/internal/app"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <package>...",
		Short: "Show AUR metadata for packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), cmd, args)
		},
	}
}

func runInfo(ctx context.Context, cmd *cobra.Command, names []string) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Info(ctx, app.InfoRequest{Names: names})
	if err != nil {
		return err
	}
	printInfo(cmd.OutOrStdout(), result)
	return nil
}
