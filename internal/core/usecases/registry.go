// internal/core/usecases/registry.go
package usecases

import (
	"sync"

	"surfacex/internal/core/domain"
)

// EntityRegistry almacena toda entidad admitida durante una ejecución,
// con unicidad por clave de deduplicación (type:valor normalizado).
// El registro es el visited-set del recorrido: los grafos cíclicos
// (A descubre B, B descubre A) terminan porque cada clave se admite
// una sola vez; no existe estructura de visitados separada.
//
// El crecimiento es monótono: ninguna entidad se elimina una vez admitida,
// así que la terminación depende solo de la guarda de deduplicación y del
// presupuesto, nunca de evicciones.
type EntityRegistry struct {
	mu sync.RWMutex

	// entities indexa por clave de deduplicación
	entities map[string]*domain.Entity

	// order conserva el orden de primera admisión por tipo
	order map[domain.EntityType][]string
}

// NewEntityRegistry crea un registro vacío.
// El estado es por ejecución, nunca global a nivel de proceso: varias
// ejecuciones (tests, targets concurrentes) no interfieren entre sí.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{
		entities: make(map[string]*domain.Entity),
		order:    make(map[domain.EntityType][]string),
	}
}

// Admit inserta la entidad si su clave es nueva y retorna si hubo inserción.
// Re-admitir una clave presente nunca cambia el snapshot: solo se unen las
// procedencias de la entidad existente.
func (r *EntityRegistry) Admit(entity *domain.Entity) bool {
	if entity == nil || !entity.IsValid() {
		return false
	}

	entity.Normalize()
	key := entity.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, found := r.entities[key]; found {
		// misma clave = misma entidad; se une la procedencia
		_ = existing.MergeOrigins(entity)
		return false
	}

	r.entities[key] = entity
	r.order[entity.Type] = append(r.order[entity.Type], entity.Value)
	return true
}

// Has indica si la clave ya fue admitida.
func (r *EntityRegistry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, found := r.entities[key]
	return found
}

// Get retorna la entidad admitida para la clave, o nil.
func (r *EntityRegistry) Get(key string) *domain.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entities[key]
}

// Len retorna el número de entidades admitidas.
func (r *EntityRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// Snapshot retorna el contenido agrupado por tipo, cada grupo en orden de
// primera admisión. La salida es determinista y está desacoplada del
// almacenamiento interno (copias, no referencias).
func (r *EntityRegistry) Snapshot() map[domain.EntityType][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[domain.EntityType][]string, len(r.order))
	for entityType, values := range r.order {
		group := make([]string, len(values))
		copy(group, values)
		snapshot[entityType] = group
	}
	return snapshot
}
