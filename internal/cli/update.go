package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"runepkg/internal/app"
)

type updateOptions struct {
	AUR    bool
	Repo   bool
	Ignore []string
	Report string
}

func newUpdateCommand() *cobra.Command {
	opts := updateOptions{}
	cmd := &cobra.Command{
		Use:     "update",
		Aliases: []string{"upgrade"},
		Short:   "Upgrade outdated AUR and repository packages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.AUR, "aur", false, "Only upgrade AUR packages")
	cmd.Flags().BoolVar(&opts.Repo, "repo", false, "Only upgrade repository packages")
	cmd.Flags().StringSliceVar(&opts.Ignore, "ignore", nil, "Ignore pattern (name, prefix*, *, optionally aur: or repo: scoped)")
	cmd.Flags().StringVar(&opts.Report, "report", "", "Write the batch report to this YAML file")
	cmd.MarkFlagsMutuallyExclusive("aur", "repo")
	return cmd
}

func runUpdate(ctx context.Context, cmd *cobra.Command, opts updateOptions) error {
	cfg := serviceConfig()
	cfg.Ignore = resolveStrings(cmd, opts.Ignore, "ignore", "ignore")
	service, err := app.NewService(cfg)
	if err != nil {
		return err
	}
	secret, err := readSecret(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	output := newBatchOutput(cmd.OutOrStdout())
	result, err := service.Update(ctx, app.UpdateRequest{
		External:   opts.AUR,
		Repo:       opts.Repo,
		Secret:     secret,
		ReportPath: resolveString(cmd, opts.Report, "report", "report"),
		OnLine:     output.sink.Line,
		OnProgress: output.sink.Progress,
	})
	output.finish()
	if err != nil {
		return err
	}
	if result.Candidates.Empty() {
		printUpdateSet(cmd.OutOrStdout(), result.Candidates)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d package(s) considered\n", len(result.Candidates.Candidates()))
	return finishBatch(cmd, result.BatchResult)
}
