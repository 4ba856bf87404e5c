package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chatpaint/paintd/internal/errors"
)

func codesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes [code]",
		Short: "List error codes",
		Long: `List the error codes paintd reports, or explain one.

Examples:
  paintd codes
  paintd codes P101`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodes(os.Stdout, args)
		},
	}
}

func runCodes(w io.Writer, args []string) error {
	if len(args) == 1 {
		tmpl, ok := errors.GetTemplate(args[0])
		if !ok {
			return errors.Newf(errors.CategoryCLI, "unknown error code %q", args[0]).
				WithSuggestion("Run paintd codes to list every code")
		}
		fmt.Fprintf(w, "%s [%s] %s\n  %s\n", args[0], tmpl.Category, tmpl.Message, tmpl.Detail)
		return nil
	}

	for _, code := range errors.GetAllCodes() {
		tmpl, _ := errors.GetTemplate(code)
		fmt.Fprintf(w, "%s  %-8s %s\n", code, tmpl.Category, tmpl.Message)
	}
	return nil
}
