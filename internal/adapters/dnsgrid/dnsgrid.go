// internal/adapters/dnsgrid/dnsgrid.go
package dnsgrid

import (
	"context"
	"strings"
	"time"

	"github.com/miekg/dns"

	"surfacex/internal/core/domain"
	"surfacex/internal/platform/errors"
	"surfacex/internal/platform/logx"
)

// Etiquetas de los grupos producidos. Las de mailservers y NS llevan trato
// preferente en el orden de expansión, así que se toman del dominio para no
// divergir de las que el planificador reconoce.
const (
	labelMailservers = domain.LabelMailservers
	labelNSServers   = domain.LabelNSServers
	labelTXTRecords  = "TXT records for domain"
)

// Grid implementa una fuente de descubrimiento sobre consultas DNS directas.
// Para nodos de tipo dominio resuelve los registros MX, NS y TXT y los ofrece
// como grupos independientes. A diferencia de las fuentes de API, los items
// del Discover ya son la lista completa: Fetch no vuelve a la red.
type Grid struct {
	client  *dns.Client
	servers []string
	logger  logx.Logger
}

// Config configura la fuente DNS.
type Config struct {
	// Servers lista de resolvers "host:puerto". Vacío usa el resolv.conf
	// del sistema, con fallback público si no se puede leer.
	Servers []string
	Timeout time.Duration
}

// New crea una fuente de descubrimiento DNS.
func New(cfg Config, logger logx.Logger) *Grid {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	servers := cfg.Servers
	if len(servers) == 0 {
		servers = systemResolvers()
	}

	return &Grid{
		client: &dns.Client{
			Timeout: cfg.Timeout,
			Net:     "udp",
		},
		servers: servers,
		logger:  logger.With("source", "dns"),
	}
}

func systemResolvers() []string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	servers := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		servers = append(servers, s+":"+conf.Port)
	}
	return servers
}

// Name retorna el nombre de la fuente.
func (g *Grid) Name() string {
	return "dns"
}

// Discover resuelve MX, NS y TXT para nodos de tipo dominio. Cada tipo de
// registro con respuestas produce su propio grupo completo.
func (g *Grid) Discover(ctx context.Context, node *domain.Node) ([]domain.DiscoveryGroup, error) {
	switch node.Entity.Type {
	case domain.EntityTypeDomain, domain.EntityTypeSubdomain, domain.EntityTypeMailserver:
	default:
		return nil, nil
	}

	name := node.Entity.Value
	groups := make([]domain.DiscoveryGroup, 0, 3)

	if mx, err := g.resolveMX(ctx, name); err != nil {
		g.logger.Debug("mx lookup failed", "domain", name, "error", err.Error())
	} else if len(mx) > 0 {
		groups = append(groups, domain.DiscoveryGroup{
			ID:          "mx",
			SearchField: labelMailservers,
			Type:        domain.EntityTypeMailserver,
			Count:       len(mx),
			Items:       mx,
		})
	}

	if ns, err := g.resolveNS(ctx, name); err != nil {
		g.logger.Debug("ns lookup failed", "domain", name, "error", err.Error())
	} else if len(ns) > 0 {
		groups = append(groups, domain.DiscoveryGroup{
			ID:          "ns",
			SearchField: labelNSServers,
			Type:        domain.EntityTypeDomain,
			Count:       len(ns),
			Items:       ns,
		})
	}

	if txt, err := g.resolveTXT(ctx, name); err != nil {
		g.logger.Debug("txt lookup failed", "domain", name, "error", err.Error())
	} else if len(txt) > 0 {
		groups = append(groups, domain.DiscoveryGroup{
			ID:          "txt",
			SearchField: labelTXTRecords,
			Type:        domain.EntityTypeDNSTXT,
			Count:       len(txt),
			Items:       txt,
		})
	}

	return groups, nil
}

// Fetch retorna el grupo tal cual: Discover ya entrega las listas completas.
func (g *Grid) Fetch(ctx context.Context, node *domain.Node, group domain.DiscoveryGroup) ([]domain.DiscoveryGroup, error) {
	return []domain.DiscoveryGroup{group}, nil
}

// Close implementa ports.DiscoverySource.
func (g *Grid) Close() error {
	return nil
}

func (g *Grid) resolveMX(ctx context.Context, name string) ([]string, error) {
	answers, err := g.exchange(ctx, name, dns.TypeMX)
	if err != nil {
		return nil, err
	}
	hosts := make([]string, 0, len(answers))
	for _, rr := range answers {
		if mx, ok := rr.(*dns.MX); ok {
			hosts = append(hosts, trimFQDN(mx.Mx))
		}
	}
	return hosts, nil
}

func (g *Grid) resolveNS(ctx context.Context, name string) ([]string, error) {
	answers, err := g.exchange(ctx, name, dns.TypeNS)
	if err != nil {
		return nil, err
	}
	hosts := make([]string, 0, len(answers))
	for _, rr := range answers {
		if ns, ok := rr.(*dns.NS); ok {
			hosts = append(hosts, trimFQDN(ns.Ns))
		}
	}
	return hosts, nil
}

func (g *Grid) resolveTXT(ctx context.Context, name string) ([]string, error) {
	answers, err := g.exchange(ctx, name, dns.TypeTXT)
	if err != nil {
		return nil, err
	}
	records := make([]string, 0, len(answers))
	for _, rr := range answers {
		if txt, ok := rr.(*dns.TXT); ok {
			records = append(records, strings.Join(txt.Txt, ""))
		}
	}
	return records, nil
}

// exchange consulta los resolvers en orden hasta obtener respuesta.
func (g *Grid) exchange(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range g.servers {
		resp, _, err := g.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Rcode == dns.RcodeNameError {
			return nil, nil
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = errors.Wrapf(domain.ErrSourceExecutionFailed, "dns rcode %s for %s", dns.RcodeToString[resp.Rcode], name)
			continue
		}
		return resp.Answer, nil
	}
	if lastErr == nil {
		lastErr = errors.Wrap(domain.ErrSourceExecutionFailed, "no resolvers configured")
	}
	return nil, lastErr
}

func trimFQDN(s string) string {
	return strings.TrimSuffix(strings.ToLower(s), ".")
}
