package cli

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"runepkg/internal/app"
	"runepkg/internal/types"
)

type searchOptions struct {
	By string
}

func newSearchCommand() *cobra.Command {
	opts := searchOptions{}
	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search the AUR",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}
	cmd.Flags().StringVar(&opts.By, "by", string(types.SearchModeNameDesc), "Search field (name|name-desc|keywords|maintainer)")
	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	mode, ok := types.ParseSearchMode(strings.TrimSpace(opts.By))
	if !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown search mode " + opts.By)
	}
	service, err := newAppService()
	if err != nil {
		return err
	}
	records, err := service.Search(ctx, app.SearchRequest{Query: query, Mode: mode})
	if err != nil {
		return err
	}
	printSearchResults(cmd.OutOrStdout(), records)
	return nil
}
