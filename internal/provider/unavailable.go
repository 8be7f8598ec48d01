package provider

import (
	"context"

	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// Unavailable returns a provider that fails every item with err. It stands in
// for a provider that could not be configured so field collection keeps
// working without credentials.
func Unavailable(name string, err error) interfaces.TranslationProvider {
	return unavailable{name: normalizeName(name), err: err}
}

type unavailable struct {
	name string
	err  error
}

func (u unavailable) Translate(_ context.Context, items []interfaces.TranslationRequest, _ string, _ interfaces.TranslationOptions) ([]interfaces.TranslationResult, error) {
	return FailAll(u.name, items, u.err), nil
}
