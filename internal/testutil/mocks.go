// internal/testutil/mocks.go
package testutil

import (
	"context"
	"sync"

	"surfacex/internal/core/domain"
)

// MockSource es un doble de ports.DiscoverySource programable por nodo.
// Si no hay funciones configuradas, Discover responde con los grupos
// registrados para la clave del nodo y Fetch retorna el grupo tal cual.
type MockSource struct {
	SourceName   string
	DiscoverFunc func(ctx context.Context, node *domain.Node) ([]domain.DiscoveryGroup, error)
	FetchFunc    func(ctx context.Context, node *domain.Node, group domain.DiscoveryGroup) ([]domain.DiscoveryGroup, error)

	mu            sync.Mutex
	groupsByNode  map[string][]domain.DiscoveryGroup
	DiscoverCalls int
	FetchCalls    int
}

// NewMockSource crea un mock de fuente de descubrimiento.
func NewMockSource(name string) *MockSource {
	return &MockSource{
		SourceName:   name,
		groupsByNode: make(map[string][]domain.DiscoveryGroup),
	}
}

// On registra los grupos que Discover responderá para una clave de nodo
// ("type:value").
func (m *MockSource) On(nodeKey string, groups ...domain.DiscoveryGroup) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groupsByNode[nodeKey] = groups
	return m
}

// Name implementa ports.DiscoverySource.
func (m *MockSource) Name() string {
	return m.SourceName
}

// Discover implementa ports.DiscoverySource.
func (m *MockSource) Discover(ctx context.Context, node *domain.Node) ([]domain.DiscoveryGroup, error) {
	m.mu.Lock()
	m.DiscoverCalls++
	m.mu.Unlock()

	if m.DiscoverFunc != nil {
		return m.DiscoverFunc(ctx, node)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.groupsByNode[node.Key()], nil
}

// Fetch implementa ports.DiscoverySource.
func (m *MockSource) Fetch(ctx context.Context, node *domain.Node, group domain.DiscoveryGroup) ([]domain.DiscoveryGroup, error) {
	m.mu.Lock()
	m.FetchCalls++
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, node, group)
	}
	return []domain.DiscoveryGroup{group}, nil
}

// Close implementa ports.DiscoverySource.
func (m *MockSource) Close() error {
	return nil
}

// MockClassifier es un doble de ports.GroupClassifier. Sin configurar,
// Classify acepta todos los grupos y ReviewPartial acepta todos los items.
type MockClassifier struct {
	ClassifyFunc      func(ctx context.Context, node *domain.Node, group domain.DiscoveryGroup) (domain.Decision, error)
	ReviewPartialFunc func(ctx context.Context, group domain.DiscoveryGroup) ([]string, error)

	mu            sync.Mutex
	ClassifyCalls int
	ReviewCalls   int
}

// NewMockClassifier crea un mock de clasificador.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// Classify implementa ports.GroupClassifier.
func (m *MockClassifier) Classify(ctx context.Context, node *domain.Node, group domain.DiscoveryGroup) (domain.Decision, error) {
	m.mu.Lock()
	m.ClassifyCalls++
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, node, group)
	}
	return domain.Add(), nil
}

// ReviewPartial implementa ports.GroupClassifier.
func (m *MockClassifier) ReviewPartial(ctx context.Context, group domain.DiscoveryGroup) ([]string, error) {
	m.mu.Lock()
	m.ReviewCalls++
	m.mu.Unlock()

	if m.ReviewPartialFunc != nil {
		return m.ReviewPartialFunc(ctx, group)
	}
	return group.Items, nil
}
