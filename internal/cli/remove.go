package cli

import (
	"context"

	"github.com/spf13/cobra"

	"runepkg/internal/app"
)

type removeOptions struct {
	Report string
}

func newRemoveCommand() *cobra.Command {
	opts := removeOptions{}
	cmd := &cobra.Command{
		Use:     "remove <package>...",
		Aliases: []string{"uninstall"},
		Short:   "Remove installed packages in one transaction",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Report, "report", "", "Write the batch report to this YAML file")
	return cmd
}

func runRemove(ctx context.Context, cmd *cobra.Command, names []string, opts removeOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	secret, err := readSecret(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	output := newBatchOutput(cmd.OutOrStdout())
	result, err := service.Remove(ctx, app.RemoveRequest{
		Names:      names,
		Secret:     secret,
		ReportPath: resolveString(cmd, opts.Report, "report", "report"),
		OnLine:     output.sink.Line,
	})
	output.finish()
	if err != nil {
		return err
	}
	return finishBatch(cmd, result)
}
