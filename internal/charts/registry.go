package charts

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Definition)
	registryMu sync.RWMutex
)

// Register adds a chart definition to the registry.
// Panics if a chart with the same kind is already registered.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Kind]; exists {
		panic(fmt.Sprintf("chart already registered: %s", def.Kind))
	}
	if def.Draw == nil {
		panic(fmt.Sprintf("chart has no draw function: %s", def.Kind))
	}

	registry[def.Kind] = def
}

// Get returns a chart definition by kind.
// Returns false if not found.
func Get(kind string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[kind]
	return def, ok
}

// All returns every registered chart in battery order.
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Definition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	sortBattery(result)
	return result
}

// ForVariant returns the charts shown by variant v in battery order.
func ForVariant(v Variant) []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []Definition
	for _, def := range registry {
		if def.InVariant(v) {
			result = append(result, def)
		}
	}
	sortBattery(result)
	return result
}

// Count returns the number of registered charts.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

func sortBattery(defs []Definition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Order != defs[j].Order {
			return defs[i].Order < defs[j].Order
		}
		return defs[i].Kind < defs[j].Kind
	})
}
