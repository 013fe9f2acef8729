package clearurls

import (
	"sync"
)

// Provider is the rule bundle for one site or family of sites. Patterns are
// compiled on first use, in two phases: the url pattern and exceptions first,
// then everything else once the provider is known to apply. Each phase runs at
// most once, so a Provider is safe for concurrent use.
type Provider struct {
	Name string

	// CompleteProvider marks a provider that the engine never applies.
	CompleteProvider bool

	// ForceRedirection is carried through from the rule data. It currently has
	// no effect on cleaning.
	ForceRedirection bool

	urlPattern        *pattern
	exceptions        []*pattern
	rules             []*pattern
	rawRules          []*pattern
	referralMarketing []*pattern
	redirections      []*pattern

	basicOnce sync.Once
	basicErr  error
	fullOnce  sync.Once
	fullErr   error
}

// NewProvider builds a provider from its rule record. Nothing is compiled
// until the provider is first used or Compile is called.
func NewProvider(name string, r Rules) *Provider {
	return &Provider{
		Name:              name,
		CompleteProvider:  r.CompleteProvider,
		ForceRedirection:  r.ForceRedirection,
		urlPattern:        newPattern(r.URLPattern),
		exceptions:        newPatterns(r.Exceptions, false),
		rules:             newPatterns(r.Rules, true),
		rawRules:          newPatterns(r.RawRules, false),
		referralMarketing: newPatterns(r.ReferralMarketing, true),
		redirections:      newPatterns(r.Redirections, false),
	}
}

// Compile compiles every pattern of the provider and returns the first error
// encountered.
func (p *Provider) Compile() error {
	return p.compileFull()
}

func (p *Provider) compileBasic() error {
	p.basicOnce.Do(func() {
		if err := p.compileField("urlPattern", p.urlPattern); err != nil {
			p.basicErr = err
			return
		}
		p.basicErr = p.compileFields("exceptions", p.exceptions)
	})
	return p.basicErr
}

func (p *Provider) compileFull() error {
	if err := p.compileBasic(); err != nil {
		return err
	}
	p.fullOnce.Do(func() {
		for _, f := range []struct {
			name     string
			patterns []*pattern
		}{
			{"rules", p.rules},
			{"rawRules", p.rawRules},
			{"referralMarketing", p.referralMarketing},
			{"redirections", p.redirections},
		} {
			if err := p.compileFields(f.name, f.patterns); err != nil {
				p.fullErr = err
				return
			}
		}
		for _, r := range p.redirections {
			if r.groups() < 1 {
				p.fullErr = p.patternError("redirections", r, ErrNoCaptureGroup)
				return
			}
		}
	})
	return p.fullErr
}

func (p *Provider) compileFields(field string, patterns []*pattern) error {
	for _, pat := range patterns {
		if err := p.compileField(field, pat); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) compileField(field string, pat *pattern) error {
	if err := pat.compile(); err != nil {
		return p.patternError(field, pat, err)
	}
	return nil
}

func (p *Provider) patternError(field string, pat *pattern, err error) error {
	return &PatternError{Provider: p.Name, Field: field, Source: pat.source, Err: err}
}

// Clean applies this provider's rules to url. If the provider does not match
// url, or one of its exceptions does, url is returned unchanged. A matching
// redirection replaces url with its decoded target and nothing else is
// applied. Otherwise raw rules, rules and, unless allowReferralMarketing is
// set, referral marketing parameters are stripped in that order.
//
// On error the unchanged url is returned.
func (p *Provider) Clean(url string, allowReferralMarketing bool) (string, error) {
	if err := p.compileBasic(); err != nil {
		return url, err
	}
	applies, err := p.applies(url)
	if err != nil || !applies {
		return url, err
	}

	if err := p.compileFull(); err != nil {
		return url, err
	}
	for _, r := range p.redirections {
		target, matched, err := r.firstGroup(url)
		if err != nil {
			return url, p.patternError("redirections", r, err)
		}
		if matched {
			log.Debugf("Provider %v redirects %v to %v", p.Name, url, target)
			return unquote(target), nil
		}
	}

	cleaned := url
	if cleaned, err = p.strip("rawRules", p.rawRules, cleaned); err != nil {
		return url, err
	}
	if cleaned, err = p.strip("rules", p.rules, cleaned); err != nil {
		return url, err
	}
	if !allowReferralMarketing {
		if cleaned, err = p.strip("referralMarketing", p.referralMarketing, cleaned); err != nil {
			return url, err
		}
	}
	return cleaned, nil
}

// applies reports whether the url pattern matches and no exception does.
func (p *Provider) applies(url string) (bool, error) {
	matched, err := p.urlPattern.match(url)
	if err != nil {
		return false, p.patternError("urlPattern", p.urlPattern, err)
	}
	if !matched {
		return false, nil
	}
	for _, e := range p.exceptions {
		excepted, err := e.match(url)
		if err != nil {
			return false, p.patternError("exceptions", e, err)
		}
		if excepted {
			log.Debugf("Provider %v excepts %v", p.Name, url)
			return false, nil
		}
	}
	return true, nil
}

func (p *Provider) strip(field string, patterns []*pattern, url string) (string, error) {
	for _, pat := range patterns {
		stripped, err := pat.removeAll(url)
		if err != nil {
			return url, p.patternError(field, pat, err)
		}
		url = stripped
	}
	return url, nil
}
