package clearurls

import (
	"github.com/getlantern/golog"
)

var vetLog = golog.LoggerFor("clearurls-vet")

// Vet compiles every provider and returns the ones that compiled, in order,
// along with the errors of the ones that did not. Rejected providers are
// logged and otherwise ignored.
func Vet(providers ...*Provider) ([]*Provider, []error) {
	vetted := make([]*Provider, 0, len(providers))
	var errs []error
	for _, p := range providers {
		if err := p.Compile(); err != nil {
			vetLog.Errorf("Skipping provider %v: %v", p.Name, err)
			errs = append(errs, err)
			continue
		}
		vetted = append(vetted, p)
	}
	vetLog.Debugf("Vetted %d providers with %d errors", len(vetted), len(errs))
	return vetted, errs
}
