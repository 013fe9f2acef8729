package main

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRules = `{"providers": {
	"all": {"urlPattern": ".*", "rules": ["utm_source"], "referralMarketing": ["tag"]},
	"redirect": {"urlPattern": "^https://r\\.example\\.com", "redirections": ["[?&]url=([^&]+)"]}
}}`

func writeRules(t *testing.T, rules string) string {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(rules), 0644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCleanArgs(t *testing.T) {
	rules := writeRules(t, testRules)

	out, err := run(t, "", "clean", "--rules", rules,
		"https://example.com/?a=1&utm_source=x&tag=y",
		"https://r.example.com/?url=https%3A%2F%2Ftarget.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/?a=1\nhttps://target.com\n", out)
}

func TestCleanStdin(t *testing.T) {
	rules := writeRules(t, testRules)

	out, err := run(t, "https://example.com/?a=1&tag=y\n\n  https://example.com/?b=2&utm_source=x  \n",
		"clean", "--rules", rules, "--allow-referral-marketing")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/?a=1&tag=y\nhttps://example.com/?b=2\n", out)
}

func TestCleanMissingRules(t *testing.T) {
	_, err := run(t, "", "clean", "--rules", filepath.Join(t.TempDir(), "missing.json"), "https://example.com/")
	assert.Error(t, err)
}

func TestCleanInvalidRules(t *testing.T) {
	rules := writeRules(t, `{"providers": {"bad": {"urlPattern": "("}, "all": {"urlPattern": ".*", "rules": ["utm_source"]}}}`)

	_, err := run(t, "", "clean", "--rules", rules, "https://example.com/?utm_source=x")
	assert.Error(t, err, "should abort on an invalid provider")

	out, err := run(t, "", "clean", "--rules", rules, "--skip-invalid", "https://example.com/?utm_source=x")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/\n", out)
}

func TestVet(t *testing.T) {
	out, err := run(t, "", "vet", "--rules", writeRules(t, testRules))
	require.NoError(t, err)
	assert.Contains(t, out, "OK, 2 providers")

	bad := writeRules(t, `{"providers": {"bad": {"urlPattern": "("}, "noGroup": {"urlPattern": ".*", "redirections": ["x"]}, "good": {"urlPattern": ".*"}}}`)
	out, err = run(t, "", "vet", "--rules", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 providers invalid")
	assert.Contains(t, out, "provider bad")
	assert.Contains(t, out, "provider noGroup")
}
