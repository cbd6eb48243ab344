// internal/core/domain/entity.go
package domain

import (
	"fmt"
	"strings"

	"surfacex/internal/platform/validator"
)

// Entity representa un activo descubierto durante la expansión de la superficie.
// Es la entidad principal de datos en SurfaceX.
type Entity struct {
	// Type clasifica la entidad
	Type EntityType

	// Value es el valor normalizado de la entidad
	Value string

	// Origins lista las procedencias que descubrieron esta entidad.
	// Solo auditoría y debug; nunca participa en la deduplicación.
	Origins []Origin
}

// Origin referencia el nodo y la búsqueda que descubrió una entidad.
type Origin struct {
	// NodeKey es la clave del nodo desde el que se lanzó la búsqueda
	NodeKey string

	// GroupID es el identificador del grupo de descubrimiento
	GroupID string

	// SearchField describe el método de búsqueda que produjo el grupo
	SearchField string
}

// NewEntity crea una nueva entidad normalizada.
func NewEntity(entityType EntityType, value string) *Entity {
	e := &Entity{
		Type:    entityType,
		Value:   value,
		Origins: []Origin{},
	}
	e.Normalize()
	return e
}

// NewEntityFromGroup crea una entidad con su origen apuntando al grupo que la descubrió.
func NewEntityFromGroup(entityType EntityType, value string, origin Origin) *Entity {
	e := NewEntity(entityType, value)
	e.AddOrigin(origin)
	return e
}

// Normalize normaliza el valor de la entidad según su tipo.
// La normalización es idempotente: normalizar un valor ya normalizado
// produce el mismo valor.
func (e *Entity) Normalize() {
	e.Value = strings.TrimSpace(e.Value)

	switch e.Type {
	case EntityTypeDomain, EntityTypeSubdomain, EntityTypeMailserver:
		e.Value = validator.NormalizeDomain(e.Value)
	case EntityTypeEmail:
		e.Value = validator.NormalizeEmail(e.Value)
	case EntityTypeIP:
		e.Value = validator.NormalizeIP(e.Value)
	case EntityTypeIPRange:
		e.Value = validator.NormalizeIPRange(e.Value)
	}
}

// Key retorna la clave de deduplicación de la entidad (type:value).
// Dos entidades con la misma clave son la misma entidad,
// independientemente del camino por el que fueron descubiertas.
func (e *Entity) Key() string {
	return string(e.Type) + ":" + e.Value
}

// IsValid verifica que la entidad tenga tipo y valor.
func (e *Entity) IsValid() bool {
	return e.Type != "" && e.Value != ""
}

// AddOrigin añade una procedencia sin duplicados.
func (e *Entity) AddOrigin(origin Origin) {
	for _, o := range e.Origins {
		if o == origin {
			return
		}
	}
	e.Origins = append(e.Origins, origin)
}

// MergeOrigins une las procedencias de otra entidad con la misma clave.
func (e *Entity) MergeOrigins(other *Entity) error {
	if e.Key() != other.Key() {
		return fmt.Errorf("%w: %s != %s", ErrEntityMergeFailed, e.Key(), other.Key())
	}
	for _, o := range other.Origins {
		e.AddOrigin(o)
	}
	return nil
}

// String retorna una representación legible de la entidad.
func (e *Entity) String() string {
	return fmt.Sprintf("%s=%s", e.Type, e.Value)
}
