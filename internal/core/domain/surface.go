// internal/core/domain/surface.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunState representa el estado global de una ejecución del engine.
type RunState string

const (
	// RunStateRunning la expansión está en curso
	RunStateRunning RunState = "running"

	// RunStateDraining el presupuesto se agotó; solo se vacía la cola
	RunStateDraining RunState = "draining"

	// RunStateFinished la ejecución terminó
	RunStateFinished RunState = "finished"
)

// SurfaceResult es el resultado completo de una expansión: el snapshot del
// registro más los metadatos de la ejecución. Es el valor que se entrega a
// la capa de presentación.
type SurfaceResult struct {
	// ID identificador único de la ejecución
	ID string

	// Target objetivo de la expansión
	Target Target

	// Entities snapshot agrupado por tipo, cada grupo en orden de admisión
	Entities map[EntityType][]string

	// Metadata información sobre la ejecución
	Metadata RunMetadata

	// Warnings avisos no fatales acumulados durante la ejecución
	Warnings []Warning
}

// RunMetadata contiene información sobre la ejecución de la expansión.
type RunMetadata struct {
	// StartTime momento de inicio
	StartTime time.Time

	// EndTime momento de finalización
	EndTime time.Time

	// Duration duración total
	Duration time.Duration

	// ProcessedNodes nodos que completaron su expansión
	ProcessedNodes int

	// SkippedNodes nodos encolados que el presupuesto dejó sin procesar
	SkippedNodes int

	// Budget techo configurado (0 = sin límite)
	Budget int

	// BudgetExhausted indica si la ejecución terminó por presupuesto.
	// No es un error: se reporta como parada temprana.
	BudgetExhausted bool

	// SourcesUsed fuentes de descubrimiento consultadas
	SourcesUsed []string
}

// Warning representa un aviso no fatal durante la ejecución.
type Warning struct {
	// Source componente que generó el aviso
	Source string

	// Message descripción del aviso
	Message string

	// Timestamp momento del aviso
	Timestamp time.Time
}

// NewSurfaceResult crea un resultado vacío para el target dado.
func NewSurfaceResult(target Target) *SurfaceResult {
	return &SurfaceResult{
		ID:       uuid.NewString(),
		Target:   target,
		Entities: make(map[EntityType][]string),
		Metadata: RunMetadata{
			StartTime: time.Now(),
			Budget:    target.MaxNodes,
		},
		Warnings: []Warning{},
	}
}

// AddWarning registra un aviso no fatal.
func (r *SurfaceResult) AddWarning(source, message string) {
	r.Warnings = append(r.Warnings, Warning{
		Source:    source,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// TotalEntities retorna el número total de entidades del snapshot.
func (r *SurfaceResult) TotalEntities() int {
	total := 0
	for _, values := range r.Entities {
		total += len(values)
	}
	return total
}

// Stats retorna el número de entidades por tipo.
func (r *SurfaceResult) Stats() map[EntityType]int {
	stats := make(map[EntityType]int, len(r.Entities))
	for t, values := range r.Entities {
		stats[t] = len(values)
	}
	return stats
}

// Finalize cierra los metadatos de la ejecución.
func (r *SurfaceResult) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}
