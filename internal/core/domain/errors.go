// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio comunes.
var (
	// Target errors
	ErrEmptyTarget   = errors.New("target cannot be empty")
	ErrInvalidDomain = errors.New("invalid domain format")

	// Entity errors
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrEmptyEntityValue  = errors.New("entity value cannot be empty")
	ErrEntityMergeFailed = errors.New("cannot merge entities with different keys")

	// Node errors
	ErrInvalidNodeTransition = errors.New("invalid node state transition")

	// Queue/budget errors
	ErrQueueEmpty      = errors.New("expansion queue is empty")
	ErrInvalidBudget   = errors.New("budget ceiling must be positive")
	ErrBudgetExhausted = errors.New("node budget exhausted")

	// Classifier contract errors
	ErrContractViolation = errors.New("classifier contract violation")

	// Source errors
	ErrSourceNotFound        = errors.New("source not found")
	ErrSourceExecutionFailed = errors.New("source execution failed")
	ErrNoSourcesAvailable    = errors.New("no discovery sources available")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// IsContractViolation indica si el error proviene de un veredicto que
// incumple el contrato del clasificador.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}
