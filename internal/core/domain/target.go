// internal/core/domain/target.go
package domain

import (
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"

	"surfacex/internal/platform/validator"
)

// Target representa el objetivo del descubrimiento.
type Target struct {
	// Root es el dominio raíz desde el que arranca la expansión
	Root string

	// MaxNodes es el techo de nodos a procesar (0 = sin límite)
	MaxNodes int
}

// NewTarget crea un target para el dominio raíz dado.
func NewTarget(root string, maxNodes int) *Target {
	return &Target{
		Root:     root,
		MaxNodes: maxNodes,
	}
}

// Validate verifica que el target sea válido y normaliza el dominio raíz.
// Un MaxNodes negativo se rechaza aquí, antes de cualquier procesamiento;
// la ausencia de techo se expresa con 0.
func (t *Target) Validate() error {
	if t.Root == "" {
		return ErrEmptyTarget
	}

	t.Root = validator.NormalizeDomain(t.Root)

	if !validator.IsDomain(t.Root) {
		return fmt.Errorf("%w: %s", ErrInvalidDomain, t.Root)
	}

	if t.MaxNodes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBudget, t.MaxNodes)
	}

	return nil
}

// RegisteredRoot retorna el eTLD+1 del dominio raíz.
// Si el cálculo falla (dominios internos, hosts sin sufijo público),
// retorna el root tal cual.
func (t *Target) RegisteredRoot() string {
	root, err := publicsuffix.EffectiveTLDPlusOne(t.Root)
	if err != nil {
		return t.Root
	}
	return root
}

// Owns verifica si un dominio pertenece al alcance del target.
func (t *Target) Owns(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	root := t.RegisteredRoot()
	return domain == root || strings.HasSuffix(domain, "."+root)
}

// String retorna una representación legible del target.
func (t *Target) String() string {
	return fmt.Sprintf("Target{root=%s, max_nodes=%d}", t.Root, t.MaxNodes)
}
