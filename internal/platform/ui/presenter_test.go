// internal/platform/ui/presenter_test.go
package ui

import (
	"testing"

	"surfacex/internal/core/domain"
	"surfacex/internal/core/ports"
)

// ambos presenters deben satisfacer el puerto
var (
	_ ports.Presenter = (*NoopPresenter)(nil)
	_ ports.Presenter = (*PTermPresenter)(nil)
)

func TestNoopPresenter_AllCallbacksSafe(t *testing.T) {
	p := NewNoopPresenter()
	target := *domain.NewTarget("example.com", 10)
	node := domain.NewNode(domain.NewEntity(domain.EntityTypeDomain, "example.com"), "example.com")
	group := domain.DiscoveryGroup{ID: "1", SearchField: "subdomains", Count: 3}

	p.RunStarted(target)
	p.NodeStarted(node, 5, 2)
	p.GroupClassified(node, group, domain.Add())
	p.EntitiesAdmitted(group, 3)
	p.RunFinished(domain.NewSurfaceResult(target))
}

func TestPTermPresenter_VerboseCallbacksDoNotPanic(t *testing.T) {
	// sin spinner arrancado los callbacks intermedios deben ser inofensivos
	p := NewPTermPresenter(true)
	node := domain.NewNode(domain.NewEntity(domain.EntityTypeDomain, "example.com"), "example.com")
	group := domain.DiscoveryGroup{ID: "1", SearchField: "subdomains", Count: 3}

	p.NodeStarted(node, 1, 0)
	p.GroupClassified(node, group, domain.Skip())
	p.EntitiesAdmitted(group, 0)
}
