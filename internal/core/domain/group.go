// internal/core/domain/group.go
package domain

// DiscoveryGroup es un lote de entidades candidatas devuelto por una fuente
// para una consulta (nodo, método). Corresponde a la estructura devuelta por
// la Discovery API cuando se solicitan direcciones de búsqueda.
type DiscoveryGroup struct {
	// ID es un identificador opaco asignado por la fuente,
	// estable dentro de una misma ejecución
	ID string

	// SearchField describe la consulta o método que produjo el grupo
	SearchField string

	// Type es el tipo de entidad de los items del grupo
	Type EntityType

	// Count es el total de resultados que la fuente declara para este grupo.
	// Puede superar a len(Items) cuando Items es solo un preview.
	Count int

	// Items es la secuencia ordenada de valores candidatos
	// (preview o lista completa, según clasificación)
	Items []string
}

// IsConsistent verifica el invariante count >= len(items).
func (g *DiscoveryGroup) IsConsistent() bool {
	return g.Count >= len(g.Items)
}

// Contains indica si value aparece en los items del grupo.
func (g *DiscoveryGroup) Contains(value string) bool {
	for _, item := range g.Items {
		if item == value {
			return true
		}
	}
	return false
}

// IsEmpty indica si el grupo no aporta ningún candidato.
func (g *DiscoveryGroup) IsEmpty() bool {
	return len(g.Items) == 0 && g.Count == 0
}
