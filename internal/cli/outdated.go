package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"runepkg/internal/app"
)

type outdatedOptions struct {
	Ignore []string
	Report string
}

func newOutdatedCommand() *cobra.Command {
	opts := outdatedOptions{}
	cmd := &cobra.Command{
		Use:   "outdated",
		Short: "List packages with a newer version available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOutdated(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Ignore, "ignore", nil, "Ignore pattern (name, prefix*, *, optionally aur: or repo: scoped)")
	cmd.Flags().StringVar(&opts.Report, "report", "", "Write the update set to this YAML file")
	return cmd
}

func runOutdated(ctx context.Context, cmd *cobra.Command, opts outdatedOptions) error {
	cfg := serviceConfig()
	cfg.Ignore = resolveStrings(cmd, opts.Ignore, "ignore", "ignore")
	service, err := app.NewService(cfg)
	if err != nil {
		return err
	}
	result, err := service.Outdated(ctx, app.OutdatedRequest{
		ReportPath: resolveString(cmd, opts.Report, "report", "report"),
	})
	if err != nil {
		return err
	}
	printUpdateSet(cmd.OutOrStdout(), result.Updates)
	if result.ReportPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", result.ReportPath)
	}
	return nil
}
