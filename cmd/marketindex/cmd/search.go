package cmd

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/search/request"
	"github.com/kailas-cloud/marketindex/internal/logger"
)

type searchOptions struct {
	criteria request.Criteria
	sort     []string
	offset   int
	limit    int
}

func newSearchCmd(rt *session) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <type> [query]",
		Short: "Query the search index and print the result as JSON",
		Long: `Query the index of one type (category, item, location).

Examples:
  marketindex search item bicycle --category c1 --sort created_desc
  marketindex search category --parent root --limit 50`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, rt, indexable.Type(args[0]), strings.Join(args[1:], " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.criteria.ParentID, "parent", "", "Parent id")
	cmd.Flags().StringVar(&opts.criteria.Slug, "slug", "", "Exact slug")
	cmd.Flags().StringSliceVar(&opts.criteria.CategoryIDs, "category", nil, "Category id (repeatable, any-of)")
	cmd.Flags().StringVar(&opts.criteria.SellerID, "seller", "", "Seller id")
	cmd.Flags().StringVar(&opts.criteria.LocationID, "location", "", "Location id")
	cmd.Flags().StringSliceVar(&opts.sort, "sort", nil, "Sort key (repeatable): created_asc, created_desc, modified_asc, modified_desc, relevance_asc, relevance_desc")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Hits to skip")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", request.DefaultLimit, "Maximum number of ids")

	return cmd
}

func runSearch(cmd *cobra.Command, rt *session, t indexable.Type, text string, opts searchOptions) error {
	ctx := logger.ContextWithLogger(cmd.Context(), rt.logger)
	a, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	req, err := request.New(t,
		request.WithText(text),
		request.WithCriteria(opts.criteria),
		request.WithSort(opts.sort...),
		request.WithOffset(opts.offset),
		request.WithLimit(opts.limit),
	)
	if err != nil {
		return err
	}

	res, err := a.Search.Search(ctx, req)
	if err != nil {
		return err
	}

	ids := res.IDs()
	if ids == nil {
		ids = []string{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"ids": ids, "total": res.Total()})
}
