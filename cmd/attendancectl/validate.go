package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"attendance/pkg/datasource"
	"attendance/pkg/locationstore"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a dataset loads",
		Long: `Decodes a JSON or YAML dataset, prints every rejected record and
loads the rest into an empty store, which catches duplicate names.`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	data, format, err := datasource.FileSource{Path: args[0]}.Fetch(cmd.Context())
	if err != nil {
		return err
	}
	records, invalid, err := datasource.Decode(data, format)
	if err != nil {
		return err
	}
	for _, bad := range invalid {
		fmt.Fprintf(out, "rejected: %v\n", bad)
	}
	if err := locationstore.New().Load(records); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d locations ok, %d rejected\n", len(records), len(invalid))
	if len(invalid) > 0 {
		return fmt.Errorf("%s: %d invalid records", args[0], len(invalid))
	}
	return nil
}
