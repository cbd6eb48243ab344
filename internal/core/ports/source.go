// internal/core/ports/source.go
package ports

import (
	"context"

	"surfacex/internal/core/domain"
)

// DiscoverySource es el port primario para los proveedores de datos de
// reconocimiento. El engine lo consume en dos fases: Discover enumera los
// grupos disponibles para un nodo (con count y preview), y Fetch materializa
// la lista completa de items de un grupo ya aceptado.
//
// Fallos recuperables (rate limit, servicio caído, método inaplicable) se
// señalan con los sentinels de platform/errors; el engine los absorbe
// saltando el método para ese nodo, nunca abortan la ejecución.
type DiscoverySource interface {
	// Name retorna el nombre único de la fuente (ej: "netlas", "whois", "dns")
	Name() string

	// Discover retorna los grupos de descubrimiento disponibles para el nodo:
	// uno por método de búsqueda aplicable, con el total declarado y un
	// preview de items. Una secuencia vacía significa que ningún método
	// aplica al tipo de entidad del nodo.
	Discover(ctx context.Context, node *domain.Node) ([]domain.DiscoveryGroup, error)

	// Fetch materializa los resultados completos de un grupo devuelto por
	// Discover. Los resultados pueden abarcar varios tipos de entidad;
	// se retorna un grupo por tipo, con la lista completa de items.
	Fetch(ctx context.Context, node *domain.Node, group domain.DiscoveryGroup) ([]domain.DiscoveryGroup, error)

	// Close libera recursos utilizados por la fuente
	Close() error
}
