// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"surfacex/internal/core/domain"
)

// PTermPresenter implementa ports.Presenter usando la biblioteca pterm para
// renderizar el progreso de la expansión en la terminal.
type PTermPresenter struct {
	mu sync.Mutex

	// Verbose añade el detalle de cada veredicto y admisión
	verbose bool

	spinner   *pterm.SpinnerPrinter
	startTime time.Time
}

// NewPTermPresenter crea un presenter interactivo para terminal.
func NewPTermPresenter(verbose bool) *PTermPresenter {
	return &PTermPresenter{verbose: verbose}
}

// RunStarted muestra el header de la ejecución.
func (p *PTermPresenter) RunStarted(target domain.Target) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()

	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("SurfaceX - Attack Surface Discovery")

	info := fmt.Sprintf("Target: %s", pterm.Cyan(target.Root))
	if target.MaxNodes > 0 {
		info += fmt.Sprintf("   Budget: %s nodes", pterm.Yellow(target.MaxNodes))
	} else {
		info += "   Budget: unbounded"
	}
	pterm.Println(info)
	pterm.Println()

	spinner, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Starting expansion…")
	if err == nil {
		p.spinner = spinner
	}
}

// NodeStarted actualiza la línea de estado con el nodo en curso.
func (p *PTermPresenter) NodeStarted(node *domain.Node, queued, processed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spinner == nil {
		return
	}
	p.spinner.UpdateText(fmt.Sprintf(
		"Queue: %d, Processed: %d, Processing %q (%s)…",
		queued, processed, node.Label, node.Entity.Type,
	))
}

// GroupClassified muestra el veredicto de cada grupo en modo verbose.
func (p *PTermPresenter) GroupClassified(node *domain.Node, group domain.DiscoveryGroup, decision domain.Decision) {
	if !p.verbose {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	line := fmt.Sprintf("%s → %s (%d results)", node.Label, group.SearchField, group.Count)
	switch decision.Kind {
	case domain.DecisionAdd:
		pterm.Success.Println("add    " + line)
	case domain.DecisionPartly:
		pterm.Warning.Println("partly " + line)
	default:
		pterm.Debug.Println("skip   " + line)
	}
}

// EntitiesAdmitted muestra las admisiones de un grupo en modo verbose.
func (p *PTermPresenter) EntitiesAdmitted(group domain.DiscoveryGroup, admitted int) {
	if !p.verbose {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Info.Printfln("%s: %d new %s entities", group.SearchField, admitted, group.Type)
}

// RunFinished cierra la línea de estado y muestra el resumen final.
func (p *PTermPresenter) RunFinished(result *domain.SurfaceResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spinner != nil {
		_ = p.spinner.Stop()
		p.spinner = nil
	}

	pterm.Println()
	summary := fmt.Sprintf("Discovered %d entities in %s (%d nodes processed",
		result.TotalEntities(),
		result.Metadata.Duration.Round(time.Millisecond),
		result.Metadata.ProcessedNodes,
	)
	if result.Metadata.BudgetExhausted {
		summary += fmt.Sprintf(", stopped early with %d unprocessed", result.Metadata.SkippedNodes)
	}
	summary += ")"
	pterm.Success.Println(summary)
}
