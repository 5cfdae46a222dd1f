package cli

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"runepkg/internal/app"
	"runepkg/internal/types"
)

type installOptions struct {
	Report string
}

func newInstallCommand() *cobra.Command {
	opts := installOptions{}
	cmd := &cobra.Command{
		Use:   "install <package>...",
		Short: "Build and install AUR packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Report, "report", "", "Write the batch report to this YAML file")
	return cmd
}

func runInstall(ctx context.Context, cmd *cobra.Command, names []string, opts installOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	secret, err := readSecret(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	output := newBatchOutput(cmd.OutOrStdout())
	result, err := service.Install(ctx, app.InstallRequest{
		Names:      names,
		Secret:     secret,
		ReportPath: resolveString(cmd, opts.Report, "report", "report"),
		OnLine:     output.sink.Line,
		OnProgress: output.sink.Progress,
	})
	output.finish()
	if err != nil {
		return err
	}
	return finishBatch(cmd, result)
}

// finishBatch prints the summary and turns item failures into a non-zero
// exit.
func finishBatch(cmd *cobra.Command, result app.BatchResult) error {
	printBatchReport(cmd.OutOrStdout(), result.Report)
	app.EmitHints(cmd.ErrOrStderr(), result.Hints)
	if result.ReportPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", result.ReportPath)
	}
	return batchError(result.Report)
}

func batchError(report types.BatchReport) error {
	if !report.HasFailures() {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeAborted).
		WithMsg(fmt.Sprintf("%d of %d packages failed", len(report.Failed), report.Total()))
}
