package clearurls

import (
	"errors"
	"fmt"

	"github.com/getlantern/golog"
	"github.com/getlantern/mtime"
	"github.com/tidwall/gjson"
)

type deserializer struct {
	log golog.Logger
}

func newDeserializer() *deserializer {
	return &deserializer{
		log: golog.LoggerFor("clearurls-deserializer"),
	}
}

// Parse reads a ClearURLs rule document, {"providers": {...}}, and compiles
// every provider. Providers keep the order they have in the document. Any
// invalid provider fails the whole document.
func Parse(data []byte) (*Providers, error) {
	ps, _, err := newDeserializer().parseDocument(data, false)
	return ps, err
}

// ParseLenient is like Parse but skips providers whose record is malformed or
// whose patterns do not compile. It returns the reason for each skipped
// provider. Only a document that cannot be read at all is an error.
func ParseLenient(data []byte) (*Providers, []error, error) {
	return newDeserializer().parseDocument(data, true)
}

// ParseProviders reads the object that maps provider names to rule records,
// the value of the "providers" key in a rule document.
func ParseProviders(data []byte) (*Providers, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedRules)
	}
	ps, _, err := newDeserializer().parseProviders(gjson.ParseBytes(data), false)
	return ps, err
}

func (d *deserializer) parseDocument(data []byte, lenient bool) (*Providers, []error, error) {
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("%w: invalid JSON", ErrMalformedRules)
	}
	return d.parseProviders(gjson.GetBytes(data, "providers"), lenient)
}

func (d *deserializer) parseProviders(obj gjson.Result, lenient bool) (*Providers, []error, error) {
	start := mtime.Now()
	if !obj.IsObject() {
		return nil, nil, fmt.Errorf("%w: providers is not an object", ErrMalformedRules)
	}

	var providers []*Provider
	var skipped []error
	var parseErr error
	obj.ForEach(func(key, value gjson.Result) bool {
		p, err := d.parseProvider(key.String(), value)
		if err != nil {
			if !lenient {
				parseErr = err
				return false
			}
			d.log.Errorf("Skipping provider %v: %v", key.String(), err)
			skipped = append(skipped, err)
			return true
		}
		providers = append(providers, p)
		return true
	})
	if parseErr != nil {
		return nil, nil, parseErr
	}

	if lenient {
		var rejected []error
		providers, rejected = Vet(providers...)
		skipped = append(skipped, rejected...)
	} else {
		for _, p := range providers {
			if err := p.Compile(); err != nil {
				return nil, nil, err
			}
		}
	}

	d.log.Debugf("Loaded %d providers in %v", len(providers), mtime.Now().Sub(start))
	return New(providers...), skipped, nil
}

func (d *deserializer) parseProvider(name string, value gjson.Result) (*Provider, error) {
	if !value.IsObject() {
		return nil, fmt.Errorf("%w: provider %v is not an object", ErrMalformedRules, name)
	}
	urlPattern := value.Get("urlPattern")
	if !urlPattern.Exists() || urlPattern.Type == gjson.Null {
		return nil, fmt.Errorf("provider %v: %w", name, ErrMissingURLPattern)
	}

	r := Rules{
		URLPattern:       urlPattern.String(),
		CompleteProvider: value.Get("completeProvider").Bool(),
		ForceRedirection: value.Get("forceRedirection").Bool(),
	}
	for _, f := range []struct {
		key  string
		dest *[]string
	}{
		{"rules", &r.Rules},
		{"rawRules", &r.RawRules},
		{"referralMarketing", &r.ReferralMarketing},
		{"exceptions", &r.Exceptions},
		{"redirections", &r.Redirections},
	} {
		list, err := stringList(value.Get(f.key))
		if err != nil {
			return nil, fmt.Errorf("%w: provider %v: %v %v", ErrMalformedRules, name, f.key, err)
		}
		*f.dest = list
	}
	return NewProvider(name, r), nil
}

// stringList reads an optional array of strings. Absent and null are empty.
func stringList(value gjson.Result) ([]string, error) {
	if !value.Exists() || value.Type == gjson.Null {
		return nil, nil
	}
	if !value.IsArray() {
		return nil, errors.New("is not an array")
	}
	var list []string
	for _, v := range value.Array() {
		if v.Type != gjson.String {
			return nil, fmt.Errorf("contains non-string %v", v.Raw)
		}
		list = append(list, v.String())
	}
	return list, nil
}
