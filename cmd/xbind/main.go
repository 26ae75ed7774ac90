// Command xbind works with xbind-annotated Go types.
//
// Usage:
//
//	xbind gen [options] <sample-xml>
//	xbind check [options] <go-package>...
//	xbind version
//
// Gen Command:
//
//	Generate annotated Go types from a sample XML document.
//
//	Options:
//	  -o, --out string      Output file (default: stdout)
//	  -p, --package string  Package name of the generated file (default "model")
//	  -t, --type string     Type name for the root element
//
// Check Command:
//
//	Validate xbind annotations in Go packages and report problems
//	with source positions.
//
//	Options:
//	  -C, --dir string  Directory to load packages from
//	  --tests           Include test files
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xbind/xbind/pkg/codegen"
	"github.com/xbind/xbind/pkg/extract"
	"github.com/xbind/xbind/pkg/xbind"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:           "xbind",
		Short:         "Generate and validate XML bindings for Go types",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(genCmd(), checkCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func genCmd() *cobra.Command {
	opts := codegen.DefaultOptions()
	var out string

	cmd := &cobra.Command{
		Use:   "gen [options] <sample-xml>",
		Short: "Generate annotated Go types from a sample XML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			src, err := codegen.Generate(sample, opts)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = os.Stdout.Write(src)
				return err
			}
			if err := os.WriteFile(out, src, 0o644); err != nil {
				return err
			}
			log.Info().Str("file", out).Msg("generated")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", opts.Package, "package name of the generated file")
	cmd.Flags().StringVarP(&opts.RootType, "type", "t", "", "type name for the root element")
	return cmd
}

func checkCmd() *cobra.Command {
	opts := extract.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "check [options] <go-package>...",
		Short: "Validate xbind annotations in Go packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			diags, err := extract.Check(opts, args...)
			if err != nil {
				return err
			}
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d)
			}
			if n := len(diags); n > 0 {
				return fmt.Errorf("%d binding problem(s)", n)
			}
			log.Debug().Msg("all bindings well formed")
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Dir, "dir", "C", "", "directory to load packages from")
	cmd.Flags().BoolVar(&opts.Tests, "tests", false, "include test files")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xbind version %s\n", xbind.VersionInfo())
		},
	}
}
