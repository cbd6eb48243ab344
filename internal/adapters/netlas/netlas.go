// internal/adapters/netlas/netlas.go
package netlas

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"surfacex/internal/core/domain"
	"surfacex/internal/platform/errors"
	"surfacex/internal/platform/httpclient"
	"surfacex/internal/platform/logx"
)

const (
	countPath  = "/api/discovery/group_of_nodes_count/"
	resultPath = "/api/discovery/group_of_nodes_result/"

	// countIDHeader identifica en el backend la lista de resultados
	// calculada en la fase de conteo; Fetch debe reenviarlo tal cual.
	countIDHeader = "X-Count-ID"
)

// Netlas implementa una fuente de descubrimiento sobre la Discovery API de
// Netlas. El protocolo tiene dos fases: la fase de conteo enumera los campos
// de búsqueda aplicables al nodo (con total y preview), y la fase de
// resultado materializa la lista completa de un campo ya aceptado.
type Netlas struct {
	client  *httpclient.Client
	apiKey  string
	apiBase string
	logger  logx.Logger

	// countIDs guarda el X-Count-ID de la fase de conteo por clave de nodo;
	// el backend lo exige para recuperar los resultados de ese mismo conteo.
	mu       sync.Mutex
	countIDs map[string]string
}

// Config configura la fuente Netlas.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// New crea una fuente Netlas.
func New(cfg Config, logger logx.Logger) (*Netlas, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrap(domain.ErrMissingConfig, "netlas: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://app.netlas.io"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpConfig := httpclient.Config{
		Timeout:         cfg.Timeout,
		MaxRetries:      5,
		RetryBackoff:    10 * time.Second,
		MaxRetryBackoff: 60 * time.Second,
		UserAgent:       "SurfaceX/1.0",
		RateLimit:       2.0,
		RateLimitBurst:  1,
	}

	return &Netlas{
		client:   httpclient.New(httpConfig, logger),
		apiKey:   cfg.APIKey,
		apiBase:  strings.TrimRight(cfg.BaseURL, "/"),
		logger:   logger.With("source", "netlas"),
		countIDs: make(map[string]string),
	}, nil
}

// Name retorna el nombre de la fuente.
func (n *Netlas) Name() string {
	return "netlas"
}

// Discover enumera los campos de búsqueda disponibles para el nodo. Las
// direcciones con count cero se descartan: una búsqueda que no traería
// ningún resultado no merece clasificación.
func (n *Netlas) Discover(ctx context.Context, node *domain.Node) ([]domain.DiscoveryGroup, error) {
	apiType, ok := apiNodeType(node.Entity.Type)
	if !ok {
		// tipo fuera del vocabulario de la API: el método no aplica
		return nil, nil
	}

	payload, err := json.Marshal(countRequest{
		NodeType:  apiType,
		NodeValue: []string{node.Entity.Value},
	})
	if err != nil {
		return nil, errors.Wrap(err, "netlas: marshal count request")
	}

	resp, err := n.client.PostJSON(ctx, n.apiBase+countPath, payload, n.headers(""))
	if err != nil {
		return nil, errors.Wrapf(err, "netlas: count request for %s", node.Key())
	}
	defer resp.Body.Close()

	// Un 4xx/5xx no reintentable llega aquí como respuesta normal; sin esta
	// comprobación el cuerpo de error se leería como un stream ndjson vacío.
	if cerr := httpclient.CheckStatus(resp); cerr != nil {
		return nil, errors.Wrapf(cerr, "netlas: count request for %s", node.Key())
	}

	countID := resp.Header.Get(countIDHeader)
	n.storeCountID(node.Key(), countID)

	groups := make([]domain.DiscoveryGroup, 0)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var d directionLine
		if uerr := json.Unmarshal([]byte(line), &d); uerr != nil {
			n.logger.Warn("skipping malformed count line", "error", uerr.Error())
			continue
		}
		if d.Count <= 0 {
			continue
		}

		groups = append(groups, domain.DiscoveryGroup{
			ID:          strconv.Itoa(d.SearchFieldID),
			SearchField: d.SearchField,
			Count:       d.Count,
			Items:       d.Preview,
		})
	}
	if serr := scanner.Err(); serr != nil {
		return nil, errors.Wrap(errors.ErrInvalidResponse, serr.Error())
	}

	n.logger.Debug("directions discovered",
		"node", node.Key(),
		"directions", len(groups),
	)
	return groups, nil
}

// Fetch materializa la lista completa de resultados de un campo de búsqueda.
// Una misma búsqueda puede devolver valores de varios tipos; se retorna un
// grupo por tipo de resultado.
func (n *Netlas) Fetch(ctx context.Context, node *domain.Node, group domain.DiscoveryGroup) ([]domain.DiscoveryGroup, error) {
	apiType, ok := apiNodeType(node.Entity.Type)
	if !ok {
		return nil, errors.Wrapf(domain.ErrSourceExecutionFailed, "netlas: no api type for %s", node.Entity.Type)
	}

	fieldID, err := strconv.Atoi(group.ID)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrSourceExecutionFailed, "netlas: bad group id %q", group.ID)
	}

	payload, err := json.Marshal(resultRequest{
		NodeType:      apiType,
		NodeValue:     []string{node.Entity.Value},
		SearchFieldID: fieldID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "netlas: marshal result request")
	}

	resp, err := n.client.PostJSON(ctx, n.apiBase+resultPath, payload, n.headers(n.countID(node.Key())))
	if err != nil {
		return nil, errors.Wrapf(err, "netlas: result request for %q", group.SearchField)
	}
	defer resp.Body.Close()

	if cerr := httpclient.CheckStatus(resp); cerr != nil {
		return nil, errors.Wrapf(cerr, "netlas: result request for %q", group.SearchField)
	}

	// Cada línea es un resultado parcial; se agrupan por tipo preservando
	// el orden de llegada dentro de cada tipo.
	byType := make(map[string][]string)
	typeOrder := make([]string, 0, 4)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var r resultLine
		if uerr := json.Unmarshal([]byte(line), &r); uerr != nil {
			n.logger.Warn("skipping malformed result line", "error", uerr.Error())
			continue
		}
		if !r.IsValid || len(r.NodeValue) == 0 {
			continue
		}

		if _, seen := byType[r.NodeType]; !seen {
			typeOrder = append(typeOrder, r.NodeType)
		}
		byType[r.NodeType] = append(byType[r.NodeType], r.NodeValue...)
	}
	if serr := scanner.Err(); serr != nil {
		return nil, errors.Wrap(errors.ErrInvalidResponse, serr.Error())
	}

	groups := make([]domain.DiscoveryGroup, 0, len(typeOrder))
	for _, t := range typeOrder {
		items := byType[t]
		groups = append(groups, domain.DiscoveryGroup{
			ID:          fmt.Sprintf("%s/%s", group.ID, t),
			SearchField: group.SearchField,
			Type:        domain.ParseEntityType(t),
			Count:       len(items),
			Items:       items,
		})
	}

	n.logger.Debug("results fetched",
		"node", node.Key(),
		"field", group.SearchField,
		"types", len(groups),
	)
	return groups, nil
}

// Close implementa ports.DiscoverySource. El cliente HTTP no mantiene
// recursos que liberar.
func (n *Netlas) Close() error {
	return nil
}

func (n *Netlas) headers(countID string) map[string]string {
	h := map[string]string{
		"X-Api-Key": n.apiKey,
	}
	if countID != "" {
		h[countIDHeader] = countID
	}
	return h
}

func (n *Netlas) storeCountID(nodeKey, countID string) {
	if countID == "" {
		return
	}
	n.mu.Lock()
	n.countIDs[nodeKey] = countID
	n.mu.Unlock()
}

func (n *Netlas) countID(nodeKey string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.countIDs[nodeKey]
}

// apiNodeType traduce un tipo de entidad al vocabulario de la API.
// Los subdominios y mailservers se buscan como dominios; los tipos que la
// API no conoce no son buscables por esta fuente.
func apiNodeType(t domain.EntityType) (string, bool) {
	switch t {
	case domain.EntityTypeSubdomain, domain.EntityTypeMailserver:
		return string(domain.EntityTypeDomain), true
	case domain.EntityTypeDomain, domain.EntityTypeIP, domain.EntityTypeIPRange,
		domain.EntityTypeASN, domain.EntityTypeASName, domain.EntityTypeNetworkName,
		domain.EntityTypeDNSTXT, domain.EntityTypeOrganization, domain.EntityTypePerson,
		domain.EntityTypeEmail, domain.EntityTypePhone, domain.EntityTypeAddress,
		domain.EntityTypeHTTPTracker, domain.EntityTypeFavicon, domain.EntityTypeJARM,
		domain.EntityTypeText:
		return string(t), true
	default:
		return "", false
	}
}

// countRequest es el payload de la fase de conteo.
type countRequest struct {
	NodeType  string   `json:"node_type"`
	NodeValue []string `json:"node_value"`
}

// resultRequest es el payload de la fase de resultado.
type resultRequest struct {
	NodeType      string   `json:"node_type"`
	NodeValue     []string `json:"node_value"`
	SearchFieldID int      `json:"search_field_id"`
}

// directionLine es una línea ndjson de la fase de conteo.
type directionLine struct {
	SearchFieldID int      `json:"search_field_id"`
	SearchField   string   `json:"search_field"`
	Count         int      `json:"count"`
	Preview       []string `json:"preview"`
}

// resultLine es una línea ndjson de la fase de resultado.
type resultLine struct {
	NodeType  string   `json:"node_type"`
	NodeValue []string `json:"node_value"`
	IsValid   bool     `json:"is_valid"`
}
