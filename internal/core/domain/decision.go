// internal/core/domain/decision.go
package domain

import "fmt"

// DecisionKind etiqueta el veredicto de un clasificador sobre un grupo.
type DecisionKind string

const (
	// DecisionAdd acepta todos los items del grupo
	DecisionAdd DecisionKind = "add"

	// DecisionSkip descarta el grupo completo
	DecisionSkip DecisionKind = "skip"

	// DecisionPartly acepta solo un subconjunto de los items del grupo
	DecisionPartly DecisionKind = "partly"
)

// IsValid verifica si el veredicto es válido.
func (k DecisionKind) IsValid() bool {
	switch k {
	case DecisionAdd, DecisionSkip, DecisionPartly:
		return true
	default:
		return false
	}
}

// MaxPartlyCount es el tamaño máximo de grupo sobre el que un clasificador
// puede emitir un veredicto partly. Grupos de 20 o más items deben decidirse
// en bloque (add o skip); es parte del contrato del clasificador, no una
// heurística del engine.
const MaxPartlyCount = 20

// Decision es el veredicto de un clasificador sobre un DiscoveryGroup.
// Variante etiquetada: Accepted solo es significativo cuando Kind es partly.
type Decision struct {
	// Kind es el veredicto
	Kind DecisionKind

	// Accepted es el subconjunto aceptado de los items del grupo.
	// Solo válido para DecisionPartly; debe ser subconjunto de group.Items.
	Accepted []string
}

// Add construye un veredicto de aceptación total.
func Add() Decision {
	return Decision{Kind: DecisionAdd}
}

// Skip construye un veredicto de descarte.
func Skip() Decision {
	return Decision{Kind: DecisionSkip}
}

// Partly construye un veredicto de aceptación parcial.
func Partly(accepted []string) Decision {
	return Decision{Kind: DecisionPartly, Accepted: accepted}
}

// ValidateAgainst comprueba que el veredicto respeta el contrato del
// clasificador para el grupo dado. Un veredicto partly solo es legal si
// group.Count < MaxPartlyCount y todos los valores aceptados aparecen en
// group.Items. Add y skip son legales para cualquier count.
func (d Decision) ValidateAgainst(group *DiscoveryGroup) error {
	if !d.Kind.IsValid() {
		return fmt.Errorf("%w: unknown decision kind %q", ErrContractViolation, d.Kind)
	}
	if d.Kind != DecisionPartly {
		return nil
	}
	if group.Count >= MaxPartlyCount {
		return fmt.Errorf("%w: partly decision on group %q with count %d (limit %d)",
			ErrContractViolation, group.SearchField, group.Count, MaxPartlyCount)
	}
	for _, v := range d.Accepted {
		if !group.Contains(v) {
			return fmt.Errorf("%w: accepted value %q not present in group %q items",
				ErrContractViolation, v, group.SearchField)
		}
	}
	return nil
}

// AcceptedValues resuelve el veredicto en la lista concreta de valores
// aceptados, preservando el orden de los items del grupo.
func (d Decision) AcceptedValues(group *DiscoveryGroup) []string {
	switch d.Kind {
	case DecisionAdd:
		return group.Items
	case DecisionPartly:
		accepted := make(map[string]bool, len(d.Accepted))
		for _, v := range d.Accepted {
			accepted[v] = true
		}
		out := make([]string, 0, len(d.Accepted))
		for _, item := range group.Items {
			if accepted[item] {
				out = append(out, item)
			}
		}
		return out
	default:
		return nil
	}
}
