// Package main provides unitconv, a command-line front end to the unit
// converter.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"converter/internal/domain"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "unitconv:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var asJSON bool

	rootCmd := &cobra.Command{
		Use:   "unitconv <input>...",
		Short: "Convert between metric and imperial units",
		Long: `unitconv converts quantities such as "3.1mi", "1/2gal" or "kg" to their
paired unit: gal<->L, mi<->km, lbs<->kg. A missing number means 1.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return convertAll(cmd.OutOrStdout(), args, asJSON)
		},
	}
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(newUnitsCmd())
	return rootCmd
}

func newUnitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List supported units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return renderUnits(cmd.OutOrStdout())
		},
	}
}

// convertAll prints every successful conversion and returns the first error
// annotated with the input that caused it.
func convertAll(w io.Writer, inputs []string, asJSON bool) error {
	var errs []error
	enc := json.NewEncoder(w)
	for _, in := range inputs {
		c, err := domain.Parse(in)
		if err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", in, err))
			continue
		}
		if asJSON {
			if err := enc.Encode(c); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprintln(w, c.String)
	}
	return errors.Join(errs...)
}

func renderUnits(w io.Writer) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Unit", "Name", "Converts to"})
	for _, u := range domain.Units() {
		name, err := domain.SpellOut(string(u))
		if err != nil {
			return err
		}
		ret, err := domain.ReturnUnit(string(u))
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{u.Display(), name, ret})
	}
	t.Render()
	return nil
}
