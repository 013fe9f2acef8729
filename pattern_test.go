package clearurls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamPatternWrapsOnce(t *testing.T) {
	p := newParamPattern("utm_source")
	expected := `(?:&amp;|[/?#&])(?:utm_source=[^&]*)`
	assert.Equal(t, expected, p.String())

	require.NoError(t, p.compile())
	re := p.re
	require.NoError(t, p.compile())
	assert.True(t, re == p.re, "compiling twice should keep the first matcher")
	assert.Equal(t, expected, p.String())
	assert.Equal(t, expected, p.re.String())
}

func TestPlainPatternNotWrapped(t *testing.T) {
	p := newPattern(`/ref=[^/?]*`)
	require.NoError(t, p.compile())
	assert.Equal(t, `/ref=[^/?]*`, p.re.String())
	assert.Equal(t, 0, p.groups())
}

func TestFirstGroup(t *testing.T) {
	p := newPattern(`[?&]url=([^&]+)`)
	require.NoError(t, p.compile())
	assert.Equal(t, 1, p.groups())

	g, matched, err := p.firstGroup("https://r.example.com/?a=1&url=abc&b=2")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, "abc", g)

	_, matched, err = p.firstGroup("https://r.example.com/?a=1")
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestUnquote(t *testing.T) {
	for in, expected := range map[string]string{
		"https://target.com":                     "https://target.com",
		"https%3A%2F%2Ftarget.com":               "https://target.com",
		"https%3a%2f%2ftarget.com":               "https://target.com",
		"https://target.com/a+b":                 "https://target.com/a+b",
		"https://target.com/100%":                "https://target.com/100%",
		"https://target.com/%zz%4":               "https://target.com/%zz%4",
		"https://target.com/%E2%9C%93":           "https://target.com/✓",
		"https://target.com/%FF":                 "https://target.com/�",
		"https%253A%252F%252Ftarget.com":         "https%3A%2F%2Ftarget.com",
		"https://target.com/?q=a%26b%3Dc%20d%25": "https://target.com/?q=a&b=c d%",
	} {
		assert.Equal(t, expected, unquote(in), in)
	}
}
