package main

import (
	"fmt"
	"io/ioutil"

	"github.com/getlantern/clearurls"
	"github.com/spf13/cobra"
)

type rulesOptions struct {
	rulesPath   string
	skipInvalid bool
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clearurls",
		Short: "Strip tracking parameters and redirect wrappers from URLs",
		Long: `clearurls applies a ClearURLs rule file to URLs.

Examples:
  # Clean URLs given as arguments
  clearurls clean --rules data.min.json "https://example.com/?utm_source=x"

  # Clean one URL per line from stdin, keeping referral marketing parameters
  clearurls clean --rules data.min.json --allow-referral-marketing < urls.txt

  # Check that every pattern in a rule file compiles
  clearurls vet --rules data.min.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCleanCmd(), newVetCmd())
	return cmd
}

func addRulesFlags(cmd *cobra.Command, opts *rulesOptions) {
	fs := cmd.Flags()
	fs.StringVar(&opts.rulesPath, "rules", "data.min.json", "ClearURLs rule file path")
	fs.BoolVar(&opts.skipInvalid, "skip-invalid", false, "skip providers that fail to load instead of aborting")
}

func loadProviders(opts rulesOptions) (*clearurls.Providers, []error, error) {
	data, err := ioutil.ReadFile(opts.rulesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read rules: %w", err)
	}
	if opts.skipInvalid {
		return clearurls.ParseLenient(data)
	}
	providers, err := clearurls.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("load rules %v: %w", opts.rulesPath, err)
	}
	return providers, nil, nil
}
