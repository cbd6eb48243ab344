// internal/platform/ui/noop_presenter.go
package ui

import "surfacex/internal/core/domain"

// NoopPresenter es una implementación vacía del Presenter que no produce
// ninguna salida. Útil para modo silent o headless.
type NoopPresenter struct{}

// NewNoopPresenter crea una instancia del presenter sin salida.
func NewNoopPresenter() *NoopPresenter {
	return &NoopPresenter{}
}

// RunStarted no hace nada
func (n *NoopPresenter) RunStarted(target domain.Target) {}

// NodeStarted no hace nada
func (n *NoopPresenter) NodeStarted(node *domain.Node, queued, processed int) {}

// GroupClassified no hace nada
func (n *NoopPresenter) GroupClassified(node *domain.Node, group domain.DiscoveryGroup, decision domain.Decision) {
}

// EntitiesAdmitted no hace nada
func (n *NoopPresenter) EntitiesAdmitted(group domain.DiscoveryGroup, admitted int) {}

// RunFinished no hace nada
func (n *NoopPresenter) RunFinished(result *domain.SurfaceResult) {}
