package ocr

import (
	"context"
	"fmt"
	"sort"
	"sync"

	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
)

// Factory builds an engine
type Factory func() Engine

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes an engine available under name. Registering the same
// name again replaces the previous factory.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// Lookup builds the engine registered under name
func Lookup(name string) (Engine, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: unknown engine %q (registered: %v)", pdferrors.ErrEngineUnavailable, name, Names())
	}
	return factory(), nil
}

// Names returns the registered engine names in sorted order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unavailableEngine stands in for an engine that was not compiled in
type unavailableEngine struct {
	name   string
	reason string
}

func (u unavailableEngine) Name() string { return u.name }

func (u unavailableEngine) Available() error {
	return fmt.Errorf("%w: %s", pdferrors.ErrEngineUnavailable, u.reason)
}

func (u unavailableEngine) Recognize(_ context.Context, _ Input) (Result, error) {
	return Result{}, u.Available()
}
