// internal/core/usecases/queue.go
package usecases

import (
	"container/heap"
	"fmt"
	"sync"

	"surfacex/internal/core/domain"
)

// Budget es el contador de nodos procesados contrastado con el techo
// configurado. Es el único punto de consumo de presupuesto de la ejecución
// y su chequeo-e-incremento es atómico.
type Budget struct {
	mu      sync.Mutex
	ceiling int // 0 = sin límite
	used    int
}

// NewBudget crea un presupuesto con techo positivo.
// Un techo de 0 o negativo es un error de configuración y se rechaza aquí,
// no se ignora en silencio; la ausencia de límite se expresa con NewUnbounded.
func NewBudget(ceiling int) (*Budget, error) {
	if ceiling <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidBudget, ceiling)
	}
	return &Budget{ceiling: ceiling}, nil
}

// NewUnbounded crea un presupuesto sin techo.
func NewUnbounded() *Budget {
	return &Budget{ceiling: 0}
}

// TryConsume comprueba e incrementa atómicamente el contador.
// Retorna si el llamador puede procesar un nodo más. Alcanzado el techo,
// toda llamada posterior falla.
func (b *Budget) TryConsume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ceiling > 0 && b.used >= b.ceiling {
		return false
	}
	b.used++
	return true
}

// Used retorna el número de unidades consumidas.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Ceiling retorna el techo configurado (0 = sin límite).
func (b *Budget) Ceiling() int {
	return b.ceiling
}

// Exhausted indica si el techo fue alcanzado.
func (b *Budget) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ceiling > 0 && b.used >= b.ceiling
}

// ExpansionQueue es la cola de nodos pendientes de expansión.
//
// El encolado es FIFO por evento de descubrimiento: todos los items de un
// grupo aceptado se encolan juntos, preservando el orden del grupo. La
// extracción prioriza por tipo de nodo (trackers y datos de registrante
// primero) con desempate FIFO estable dentro de la misma prioridad.
//
// Cada clave de entidad se encola como mucho una vez en toda la ejecución;
// junto con el registro, esto garantiza que ningún nodo done se re-encola.
type ExpansionQueue struct {
	mu      sync.Mutex
	nodes   nodeHeap
	seen    map[string]bool
	nextSeq uint64
}

// NewExpansionQueue crea una cola vacía.
func NewExpansionQueue() *ExpansionQueue {
	q := &ExpansionQueue{
		seen: make(map[string]bool),
	}
	heap.Init(&q.nodes)
	return q
}

// Enqueue admite un nodo futuro. No-op si la clave de su entidad ya pasó
// por la cola: un nodo procesado (o pendiente) nunca se duplica aunque su
// entidad se redescubra por otro camino.
func (q *ExpansionQueue) Enqueue(node *domain.Node) bool {
	if node == nil || node.Entity == nil {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	key := node.Key()
	if q.seen[key] {
		return false
	}

	q.seen[key] = true
	node.Seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.nodes, node)
	return true
}

// Next extrae el siguiente nodo a procesar, o false si la cola está vacía.
func (q *ExpansionQueue) Next() (*domain.Node, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.nodes.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&q.nodes).(*domain.Node), true
}

// Len retorna el número de nodos pendientes.
func (q *ExpansionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nodes.Len()
}

// nodeHeap implementa heap.Interface ordenando por (prioridad, secuencia).
type nodeHeap []*domain.Node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	pi, pj := h[i].Priority(), h[j].Priority()
	if pi != pj {
		return pi < pj
	}
	return h[i].Seq < h[j].Seq
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) {
	*h = append(*h, x.(*domain.Node))
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return node
}
