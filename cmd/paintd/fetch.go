package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chatpaint/paintd/internal/errors"
	"github.com/chatpaint/paintd/pkg/api"
)

func fetchCmd(configPath *string) *cobra.Command {
	var users []string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Load the catalog once and report",
		Long: `Load the catalog once and print what was merged.

With --user, also print the paint assigned to each named user as JSON.

Examples:
  paintd fetch
  paintd fetch --user=alice --user=bob`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return errors.Newf(errors.CategoryCLI, "unexpected argument %q", args[0]).
					WithSuggestion("Name users with --user")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			return runFetch(cmd.Context(), a, users, os.Stdout)
		},
	}

	cmd.Flags().StringSliceVarP(&users, "user", "u", nil, "Print the paint assigned to this user (repeatable)")

	return cmd
}

func runFetch(ctx context.Context, a *app, users []string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	stats := a.registry.Stats()
	success("Loaded catalog from %s", a.loader)
	info("%d paints parsed, %d skipped, %d users assigned", result.Parsed, result.Skipped, result.Assigned)
	info("%d known paints, %d assignments", stats.KnownPaints, stats.Assignments)

	for _, user := range users {
		p, ok := a.registry.Lookup(user)
		if !ok {
			warn("%s has no paint", user)
			continue
		}
		out, err := json.MarshalIndent(api.NewPaintView(p), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", out)
	}
	return nil
}
