// Package fixture собирает тестовые зависимости по именам: провайдер
// регистрируется под именем, тест запрашивает значение по имени, а значение
// вычисляется один раз на тест и забывается после его завершения.
package fixture

import (
	"sync"
	"testing"
)

// Provider вычисляет значение фикстуры для теста tb. Освобождение ресурсов
// регистрируется через tb.Cleanup.
type Provider func(tb testing.TB) any

type cacheKey struct {
	tb   testing.TB
	name string
}

type Registry struct {
	mu        sync.Mutex
	providers map[string]Provider
	cache     map[cacheKey]any
	tracked   map[testing.TB]struct{}
}

// Default - реестр, в котором объявлены готовые фикстуры пакета.
var Default = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		cache:     make(map[cacheKey]any),
		tracked:   make(map[testing.TB]struct{}),
	}
}

// Register объявляет фикстуру name. Повторная регистрация заменяет провайдер.
func (r *Registry) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
}

// RegisterValue объявляет фикстуру с постоянным значением.
func (r *Registry) RegisterValue(name string, value any) {
	r.Register(name, func(testing.TB) any { return value })
}

// Value возвращает значение фикстуры name для теста tb. В рамках одного теста
// провайдер вызывается не более одного раза.
func (r *Registry) Value(tb testing.TB, name string) any {
	tb.Helper()

	key := cacheKey{tb: tb, name: name}
	r.mu.Lock()
	if value, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return value
	}
	provider, ok := r.providers[name]
	r.mu.Unlock()

	if !ok {
		tb.Fatalf("fixture %q not found", name)
		return nil
	}

	value := provider(tb)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = value
	if _, ok := r.tracked[tb]; !ok {
		r.tracked[tb] = struct{}{}
		tb.Cleanup(func() { r.forget(tb) })
	}
	return value
}

func (r *Registry) String(tb testing.TB, name string) string {
	tb.Helper()

	value, ok := r.Value(tb, name).(string)
	if !ok {
		tb.Fatalf("fixture %q is not a string", name)
	}
	return value
}

// Use вычисляет фикстуры ради их побочного эффекта, например создания базы.
func (r *Registry) Use(tb testing.TB, names ...string) {
	tb.Helper()
	for _, name := range names {
		r.Value(tb, name)
	}
}

func (r *Registry) forget(tb testing.TB) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.cache {
		if key.tb == tb {
			delete(r.cache, key)
		}
	}
	delete(r.tracked, tb)
}
