package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/getlantern/clearurls"
	"github.com/spf13/cobra"
)

type cleanOptions struct {
	rulesOptions
	allowReferralMarketing bool
	maxSweeps              int
}

func newCleanCmd() *cobra.Command {
	var opts cleanOptions
	cmd := &cobra.Command{
		Use:   "clean [url...]",
		Short: "Clean URLs from the arguments, or one per line from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			providers, _, err := loadProviders(opts.rulesOptions)
			if err != nil {
				return err
			}
			providers.MaxSweeps = opts.maxSweeps
			if len(args) > 0 {
				return cleanURLs(cmd.OutOrStdout(), providers, args, opts.allowReferralMarketing)
			}
			return cleanLines(cmd.InOrStdin(), cmd.OutOrStdout(), providers, opts.allowReferralMarketing)
		},
	}
	addRulesFlags(cmd, &opts.rulesOptions)
	fs := cmd.Flags()
	fs.BoolVar(&opts.allowReferralMarketing, "allow-referral-marketing", false, "keep referral marketing parameters")
	fs.IntVar(&opts.maxSweeps, "max-sweeps", clearurls.DefaultMaxSweeps, "maximum passes over all providers per URL")
	return cmd
}

func cleanURLs(w io.Writer, providers *clearurls.Providers, urls []string, allowReferralMarketing bool) error {
	clean := providers.Cleaner(allowReferralMarketing)
	for _, u := range urls {
		if _, err := fmt.Fprintln(w, clean(u)); err != nil {
			return err
		}
	}
	return nil
}

func cleanLines(r io.Reader, w io.Writer, providers *clearurls.Providers, allowReferralMarketing bool) error {
	clean := providers.Cleaner(allowReferralMarketing)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, clean(line)); err != nil {
			return err
		}
	}
	return scanner.Err()
}
