// internal/core/ports/presenter.go
package ports

import "surfacex/internal/core/domain"

// Presenter recibe el progreso de la expansión para mostrarlo al usuario.
// No afecta al comportamiento del engine; una implementación noop es válida.
type Presenter interface {
	// RunStarted se emite al arrancar la expansión
	RunStarted(target domain.Target)

	// NodeStarted se emite al empezar a procesar un nodo
	NodeStarted(node *domain.Node, queued, processed int)

	// GroupClassified se emite tras cada veredicto del clasificador
	GroupClassified(node *domain.Node, group domain.DiscoveryGroup, decision domain.Decision)

	// EntitiesAdmitted se emite cuando un grupo aceptado entra al registro
	EntitiesAdmitted(group domain.DiscoveryGroup, admitted int)

	// RunFinished se emite con el resultado final
	RunFinished(result *domain.SurfaceResult)
}
