package modelgateway

import (
	"fmt"
	"sync"
)

// Settings holds the provider configuration a factory needs.
type Settings struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Factory is a constructor function that creates a new Gateway instance.
type Factory func(s Settings) (Gateway, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a gateway factory available by driver name.
// It is typically called from an init() function in the adapter package.
func Register(driver string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[driver]; exists {
		panic(fmt.Sprintf("modelgateway: duplicate registration for %q", driver))
	}
	factories[driver] = factory
}

// New creates a new Gateway by driver name using the registered factory.
func New(driver string, s Settings) (Gateway, error) {
	mu.RLock()
	factory, ok := factories[driver]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("modelgateway: unknown driver %q", driver)
	}
	return factory(s)
}

// Available returns the names of all registered drivers.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
