// internal/core/domain/node.go
package domain

import "fmt"

// NodeState representa el estado de un nodo en el recorrido.
type NodeState string

const (
	// NodeStatePending el nodo está encolado y aún no procesado
	NodeStatePending NodeState = "pending"

	// NodeStateProcessing las consultas del nodo están en curso
	NodeStateProcessing NodeState = "processing"

	// NodeStateDone todos los métodos aplicables fueron consultados
	// y sus resultados incorporados al registro
	NodeStateDone NodeState = "done"

	// NodeStateSkippedBudget el nodo nunca se procesó porque el
	// presupuesto se agotó antes de su turno
	NodeStateSkippedBudget NodeState = "skipped-budget"
)

// IsValid verifica si el estado es válido.
func (s NodeState) IsValid() bool {
	switch s {
	case NodeStatePending, NodeStateProcessing, NodeStateDone, NodeStateSkippedBudget:
		return true
	default:
		return false
	}
}

// IsTerminal indica si el estado es final.
func (s NodeState) IsTerminal() bool {
	return s == NodeStateDone || s == NodeStateSkippedBudget
}

// Node es una unidad del recorrido: una entidad cuyas relaciones salientes
// aún no han sido consultadas. Transiciona pending → done una sola vez;
// nunca se re-encola una vez done, aunque se redescubra por otro camino
// (la pertenencia al registro actúa de guarda).
type Node struct {
	// Entity es la entidad a expandir
	Entity *Entity

	// Label describe el grupo de descubrimiento que originó el nodo,
	// normalmente el nombre del campo de búsqueda
	Label string

	// State es el estado actual del nodo
	State NodeState

	// Seq es el número de secuencia de encolado, usado como desempate
	// FIFO dentro de la misma prioridad
	Seq uint64
}

// NewNode crea un nodo pendiente para una entidad.
func NewNode(entity *Entity, label string) *Node {
	return &Node{
		Entity: entity,
		Label:  label,
		State:  NodeStatePending,
	}
}

// Key retorna la clave de deduplicación de la entidad del nodo.
func (n *Node) Key() string {
	return n.Entity.Key()
}

// Priority retorna la prioridad de expansión del nodo.
// Los nodos de dominio etiquetados como mailservers o NS se adelantan al
// resto de dominios: históricamente rinden las conexiones más fuertes.
func (n *Node) Priority() int {
	p := n.Entity.Type.ExpandPriority()
	if n.Entity.Type == EntityTypeDomain {
		switch n.Label {
		case LabelMailservers, LabelNSServers:
			p--
		}
	}
	return p
}

// MarkProcessing transiciona el nodo a processing.
func (n *Node) MarkProcessing() error {
	if n.State != NodeStatePending {
		return fmt.Errorf("%w: %s -> processing", ErrInvalidNodeTransition, n.State)
	}
	n.State = NodeStateProcessing
	return nil
}

// MarkDone transiciona el nodo a done.
func (n *Node) MarkDone() error {
	if n.State.IsTerminal() {
		return fmt.Errorf("%w: %s -> done", ErrInvalidNodeTransition, n.State)
	}
	n.State = NodeStateDone
	return nil
}

// MarkSkippedBudget transiciona el nodo a skipped-budget.
func (n *Node) MarkSkippedBudget() error {
	if n.State.IsTerminal() {
		return fmt.Errorf("%w: %s -> skipped-budget", ErrInvalidNodeTransition, n.State)
	}
	n.State = NodeStateSkippedBudget
	return nil
}

// Etiquetas de grupo con trato preferente en el orden de expansión.
const (
	LabelMailservers = "Mailservers for domain"
	LabelNSServers   = "NS servers for domain"
)
