// internal/core/usecases/engine.go
package usecases

import (
	"context"
	"sync"

	"surfacex/internal/core/domain"
	"surfacex/internal/core/ports"
	"surfacex/internal/platform/logx"
	"surfacex/internal/platform/ui"
	"surfacex/internal/platform/validator"
)

// Engine es el motor de expansión del grafo de descubrimiento.
//
// Convierte un flujo de resultados heterogéneos, posiblemente cíclicos y
// posiblemente enormes, en un grafo de exploración deduplicado, acotado y
// terminante. Cada decisión de expansión (aceptar, descartar, parcial) se
// delega al clasificador externo; el engine solo valida el contrato de las
// respuestas y aplica la mecánica determinista del recorrido.
//
// Las consultas de descubrimiento de un nodo se lanzan en paralelo, pero la
// clasificación, las admisiones al registro y el consumo de presupuesto se
// serializan en la goroutine del engine: el registro y el contador son el
// único estado mutable compartido y tienen semántica de escritor único.
type Engine struct {
	target     domain.Target
	sources    []ports.DiscoverySource
	classifier ports.GroupClassifier
	presenter  ports.Presenter
	logger     logx.Logger
	workers    int

	registry *EntityRegistry
	queue    *ExpansionQueue
	budget   *Budget

	mu    sync.Mutex
	state domain.RunState
}

// EngineOptions configura el engine.
type EngineOptions struct {
	Target     domain.Target
	Sources    []ports.DiscoverySource
	Classifier ports.GroupClassifier
	Presenter  ports.Presenter
	Logger     logx.Logger

	// Workers limita las consultas de descubrimiento concurrentes por nodo
	Workers int
}

// NewEngine crea un engine para una ejecución. Todo el estado (registro,
// cola, presupuesto) pertenece a la instancia; ejecuciones paralelas no
// comparten nada. Una configuración inválida falla aquí, antes de procesar.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if err := opts.Target.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Sources) == 0 {
		return nil, domain.ErrNoSourcesAvailable
	}
	if opts.Classifier == nil {
		return nil, domain.ErrMissingConfig
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Presenter == nil {
		opts.Presenter = ui.NewNoopPresenter()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	budget := NewUnbounded()
	if opts.Target.MaxNodes > 0 {
		var err error
		budget, err = NewBudget(opts.Target.MaxNodes)
		if err != nil {
			return nil, err
		}
	}

	return &Engine{
		target:     opts.Target,
		sources:    opts.Sources,
		classifier: opts.Classifier,
		presenter:  opts.Presenter,
		logger:     opts.Logger.With("component", "engine"),
		workers:    opts.Workers,
		registry:   NewEntityRegistry(),
		queue:      NewExpansionQueue(),
		budget:     budget,
	}, nil
}

// State retorna el estado actual de la ejecución.
func (e *Engine) State() domain.RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s domain.RunState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Run ejecuta la expansión completa y retorna el snapshot final.
//
// Termina cuando la cola se vacía (todos los nodos alcanzables y permitidos
// por presupuesto procesados) o cuando el contexto se cancela. La
// terminación está garantizada: la guarda de deduplicación encola cada
// clave como mucho una vez y el presupuesto acota el trabajo con
// independencia de la conectividad del grafo, ciclos incluidos.
//
// En cancelación el resultado parcial es consistente: nunca queda un grupo
// admitido a medias, porque las admisiones de un grupo no tienen puntos de
// suspensión intermedios.
func (e *Engine) Run(ctx context.Context) (*domain.SurfaceResult, error) {
	result := domain.NewSurfaceResult(e.target)
	for _, src := range e.sources {
		result.Metadata.SourcesUsed = append(result.Metadata.SourcesUsed, src.Name())
	}

	e.setState(domain.RunStateRunning)
	e.presenter.RunStarted(e.target)
	e.logger.Info("expansion started",
		"target", e.target.Root,
		"budget", e.budget.Ceiling(),
		"sources", len(e.sources),
	)

	// El dominio raíz es la primera entidad y el primer nodo
	root := domain.NewEntity(domain.EntityTypeDomain, e.target.Root)
	e.registry.Admit(root)
	e.queue.Enqueue(domain.NewNode(root, e.target.Root))

	processed := 0
	skipped := 0

	for ctx.Err() == nil {
		node, ok := e.queue.Next()
		if !ok {
			break
		}

		if !e.budget.TryConsume() {
			_ = node.MarkSkippedBudget()
			skipped++
			if e.State() == domain.RunStateRunning {
				e.setState(domain.RunStateDraining)
				e.logger.Info("node budget exhausted, draining queue",
					"ceiling", e.budget.Ceiling(),
				)
			}
			continue
		}

		_ = node.MarkProcessing()
		e.presenter.NodeStarted(node, e.queue.Len(), processed)

		e.processNode(ctx, node, result)

		_ = node.MarkDone()
		processed++
	}

	// Cancelación: lo que quede encolado nunca se procesó
	skipped += e.queue.drainRemaining()

	e.setState(domain.RunStateFinished)

	result.Entities = e.registry.Snapshot()
	result.Metadata.ProcessedNodes = processed
	result.Metadata.SkippedNodes = skipped
	result.Metadata.BudgetExhausted = e.budget.Exhausted()
	result.Finalize()

	if result.Metadata.BudgetExhausted && skipped > 0 {
		e.logger.Info("run stopped early",
			"processed", processed,
			"unprocessed", skipped,
		)
	}

	e.presenter.RunFinished(result)
	e.logger.Info("expansion finished",
		"entities", result.TotalEntities(),
		"processed", processed,
		"skipped", skipped,
		"duration_ms", result.Metadata.Duration.Milliseconds(),
	)

	return result, ctx.Err()
}

// discovery agrupa el resultado de Discover de una fuente para un nodo.
type discovery struct {
	source ports.DiscoverySource
	groups []domain.DiscoveryGroup
	err    error
}

// discoverAll consulta todas las fuentes para el nodo, en paralelo con
// límite de workers. El orden de fuentes del resultado es estable para que
// la clasificación posterior sea determinista.
func (e *Engine) discoverAll(ctx context.Context, node *domain.Node) []discovery {
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	results := make([]discovery, len(e.sources))

	for i, source := range e.sources {
		wg.Add(1)
		go func(i int, src ports.DiscoverySource) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			groups, err := src.Discover(ctx, node)
			results[i] = discovery{source: src, groups: groups, err: err}
		}(i, source)
	}

	wg.Wait()
	return results
}

// processNode ejecuta los pasos 2-5 del procesamiento de un nodo:
// descubrir, clasificar, admitir, encolar.
func (e *Engine) processNode(ctx context.Context, node *domain.Node, result *domain.SurfaceResult) {
	for _, d := range e.discoverAll(ctx, node) {
		if d.err != nil {
			// fallo de fuente: el método no produce nada esta ronda;
			// los reintentos son asunto del adapter, no del engine
			e.logger.Warn("discovery failed",
				"source", d.source.Name(),
				"node", node.Key(),
				"error", d.err.Error(),
			)
			result.AddWarning(d.source.Name(), d.err.Error())
			continue
		}

		for _, group := range d.groups {
			e.handleGroup(ctx, d.source, node, group, result)
		}
	}
}

// handleGroup clasifica un grupo y pliega el veredicto en admisiones.
func (e *Engine) handleGroup(
	ctx context.Context,
	source ports.DiscoverySource,
	node *domain.Node,
	group domain.DiscoveryGroup,
	result *domain.SurfaceResult,
) {
	if group.IsEmpty() {
		return
	}

	decision, err := e.classifier.Classify(ctx, node, group)
	if err != nil {
		// el clasificador no respondió: el grupo se descarta, nunca aborta
		e.logger.Warn("classifier failed, treating group as skip",
			"group", group.SearchField,
			"error", err.Error(),
		)
		result.AddWarning("classifier", err.Error())
		decision = domain.Skip()
	}

	if verr := decision.ValidateAgainst(&group); verr != nil {
		// incumplimiento de contrato del adapter: rechazo con diagnóstico
		e.logger.Err(verr, "group", group.SearchField, "count", group.Count)
		result.AddWarning("classifier", verr.Error())
		decision = domain.Skip()
	}

	e.presenter.GroupClassified(node, group, decision)

	switch decision.Kind {
	case domain.DecisionSkip:
		return

	case domain.DecisionAdd:
		for _, full := range e.fetchGroups(ctx, source, node, group, result) {
			e.admitGroup(node, full, result)
		}

	case domain.DecisionPartly:
		if len(decision.Accepted) > 0 {
			// subconjunto ya resuelto sobre los items del propio grupo
			sub := group
			sub.Items = decision.AcceptedValues(&group)
			e.admitGroup(node, sub, result)
			return
		}

		for _, full := range e.fetchGroups(ctx, source, node, group, result) {
			accepted, rerr := e.classifier.ReviewPartial(ctx, full)
			if rerr != nil {
				e.logger.Warn("partial review failed, treating group as skip",
					"group", full.SearchField,
					"error", rerr.Error(),
				)
				result.AddWarning("classifier", rerr.Error())
				continue
			}

			partial := domain.Partly(accepted)
			if verr := partial.ValidateAgainst(&full); verr != nil {
				e.logger.Err(verr, "group", full.SearchField)
				result.AddWarning("classifier", verr.Error())
				continue
			}

			sub := full
			sub.Items = partial.AcceptedValues(&full)
			e.admitGroup(node, sub, result)
		}
	}
}

// fetchGroups materializa los resultados completos de un grupo aceptado.
func (e *Engine) fetchGroups(
	ctx context.Context,
	source ports.DiscoverySource,
	node *domain.Node,
	group domain.DiscoveryGroup,
	result *domain.SurfaceResult,
) []domain.DiscoveryGroup {
	full, err := source.Fetch(ctx, node, group)
	if err != nil {
		e.logger.Warn("fetch failed",
			"source", source.Name(),
			"group", group.SearchField,
			"error", err.Error(),
		)
		result.AddWarning(source.Name(), err.Error())
		return nil
	}
	return full
}

// admitGroup admite los items de un grupo en el registro y encola las
// entidades nuevas. No hay puntos de suspensión en el cuerpo: los items
// aceptados de un grupo entran todos juntos o no entran.
func (e *Engine) admitGroup(node *domain.Node, group domain.DiscoveryGroup, result *domain.SurfaceResult) {
	origin := domain.Origin{
		NodeKey:     node.Key(),
		GroupID:     group.ID,
		SearchField: group.SearchField,
	}

	admitted := 0
	for _, value := range group.Items {
		entity := domain.NewEntityFromGroup(e.refineType(group.Type, value), value, origin)
		if !entity.IsValid() {
			continue
		}
		if e.registry.Admit(entity) {
			e.queue.Enqueue(domain.NewNode(entity, group.SearchField))
			admitted++
		}
	}

	if admitted > 0 {
		e.presenter.EntitiesAdmitted(group, admitted)
		e.logger.Debug("entities admitted",
			"group", group.SearchField,
			"type", group.Type,
			"admitted", admitted,
			"offered", len(group.Items),
		)
	}
}

// refineType ajusta el tipo inferido del grupo al contexto del target:
// los dominios bajo el raíz registrado se admiten como subdominios.
func (e *Engine) refineType(t domain.EntityType, value string) domain.EntityType {
	if t == domain.EntityTypeDomain && validator.IsSubdomainOf(value, e.target.RegisteredRoot()) {
		return domain.EntityTypeSubdomain
	}
	return t
}

// drainRemaining vacía la cola contando lo que quedó sin procesar.
func (q *ExpansionQueue) drainRemaining() int {
	drained := 0
	for {
		node, ok := q.Next()
		if !ok {
			return drained
		}
		_ = node.MarkSkippedBudget()
		drained++
	}
}
