// internal/core/ports/classifier.go
package ports

import (
	"context"

	"surfacex/internal/core/domain"
)

// GroupClassifier es el port del clasificador de decisiones externo.
// Toda la heurística de relevancia (basada en reglas, en un modelo, o con
// humano en el bucle) vive detrás de esta interfaz; el engine solo valida
// el contrato de las respuestas y nunca implementa la heurística.
type GroupClassifier interface {
	// Classify etiqueta un grupo de descubrimiento del nodo dado.
	// Un veredicto partly puede venir sin subconjunto resuelto: el engine
	// materializará la lista completa y pedirá el subconjunto con
	// ReviewPartial. Contrato: partly solo es legal para grupos con
	// count < domain.MaxPartlyCount.
	Classify(ctx context.Context, node *domain.Node, group domain.DiscoveryGroup) (domain.Decision, error)

	// ReviewPartial recibe un grupo con su lista completa de items y
	// retorna el subconjunto aceptado, como lista ordenada de valores.
	// Contrato: el subconjunto debe estar contenido en group.Items.
	ReviewPartial(ctx context.Context, group domain.DiscoveryGroup) ([]string, error)
}
