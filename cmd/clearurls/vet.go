package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVetCmd() *cobra.Command {
	var opts rulesOptions
	cmd := &cobra.Command{
		Use:   "vet",
		Short: "Check that every provider in a rule file loads and compiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVet(cmd, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.rulesPath, "rules", "data.min.json", "ClearURLs rule file path")
	return cmd
}

func runVet(cmd *cobra.Command, opts rulesOptions) error {
	opts.skipInvalid = true
	providers, skipped, err := loadProviders(opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, err := range skipped {
		fmt.Fprintln(out, err)
	}
	if len(skipped) > 0 {
		return fmt.Errorf("%d of %d providers invalid", len(skipped), providers.Len()+len(skipped))
	}
	fmt.Fprintf(out, "vet %v: OK, %d providers\n", opts.rulesPath, providers.Len())
	return nil
}
