package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chatpaint/paintd/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	// plainOutput drops ANSI escapes from terminal output.
	plainOutput bool

	// jsonErrors reports a failed command as one JSON object. newLogger
	// sets it when log.format is json.
	jsonErrors bool
)

func main() {
	var (
		configPath string
		noColor    bool
	)

	rootCmd := &cobra.Command{
		Use:   "paintd",
		Short: "Chat name paint registry",
		Long: `paintd keeps a live registry of chat name paints.

It loads the bulk paint catalog, applies live cosmetic and entitlement
events, and answers "which paint does this user have" over HTTP.

Configuration is read from paintd.json in the working directory, or
from the file given with --config (.json, .yaml or .toml).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setColors(noColor || os.Getenv("NO_COLOR") != "")
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output (also NO_COLOR)")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		fetchCmd(&configPath),
		codesCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func setColors(off bool) {
	plainOutput = off
	if off {
		errors.DisableColors()
	} else {
		errors.EnableColors()
	}
}

// reportError writes a failed command's error to w.
func reportError(w io.Writer, err error) {
	pe := errors.FromError(err, "P170")
	if jsonErrors {
		fmt.Fprintln(w, pe.FormatJSON())
		return
	}
	errors.Fprint(w, pe)
}

// success prints a success message.
func success(format string, args ...any) {
	mark := "\033[32m✓\033[0m"
	if plainOutput {
		mark = "✓"
	}
	fmt.Printf("%s %s\n", mark, fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	mark := "\033[33m⚠\033[0m"
	if plainOutput {
		mark = "⚠"
	}
	fmt.Printf("%s %s\n", mark, fmt.Sprintf(format, args...))
}
