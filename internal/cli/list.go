package cli

import (
	"context"

	"github.com/spf13/cobra"

	"runepkg/internal/app"
	"runepkg/internal/types"
)

type listOptions struct {
	Explicit bool
	Orphans  bool
	External bool
}

func (o listOptions) view() types.InstalledView {
	switch {
	case o.Explicit:
		return types.InstalledViewExplicit
	case o.Orphans:
		return types.InstalledViewOrphans
	case o.External:
		return types.InstalledViewExternal
	default:
		return types.InstalledViewAll
	}
}

func newListCommand() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Explicit, "explicit", false, "Only explicitly installed packages")
	cmd.Flags().BoolVar(&opts.Orphans, "orphans", false, "Only orphaned dependencies")
	cmd.Flags().BoolVar(&opts.External, "external", false, "Only packages not from a sync repository")
	cmd.MarkFlagsMutuallyExclusive("explicit", "orphans", "external")
	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, opts listOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	pkgs, err := service.List(ctx, app.ListRequest{View: opts.view()})
	if err != nil {
		return err
	}
	printInstalled(cmd.OutOrStdout(), pkgs)
	return nil
}
