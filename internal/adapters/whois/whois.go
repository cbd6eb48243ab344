// internal/adapters/whois/whois.go
package whois

import (
	"context"
	"strings"
	"time"

	whoisquery "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"surfacex/internal/core/domain"
	"surfacex/internal/platform/errors"
	"surfacex/internal/platform/logx"
	"surfacex/internal/platform/validator"
)

// Source implementa descubrimiento sobre registros WHOIS. Para nodos de tipo
// dominio extrae contactos, organizaciones y name servers del registro y los
// ofrece como grupos, uno por tipo de entidad resultante.
type Source struct {
	client *whoisquery.Client
	logger logx.Logger
}

// New crea una fuente WHOIS.
func New(timeout time.Duration, logger logx.Logger) *Source {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := whoisquery.NewClient()
	client.SetTimeout(timeout)

	return &Source{
		client: client,
		logger: logger.With("source", "whois"),
	}
}

// Name retorna el nombre de la fuente.
func (s *Source) Name() string {
	return "whois"
}

// Discover consulta el WHOIS del dominio y agrupa los campos de interés.
// Solo aplica a dominios registrables: los subdominios comparten el registro
// de su raíz y consultarlos solo duplicaría resultados.
func (s *Source) Discover(ctx context.Context, node *domain.Node) ([]domain.DiscoveryGroup, error) {
	if node.Entity.Type != domain.EntityTypeDomain {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.client.Whois(node.Entity.Value)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrSourceExecutionFailed, "whois query for %s: %v", node.Entity.Value, err)
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		if err == whoisparser.ErrNotFoundDomain {
			return nil, nil
		}
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "whois parse for %s: %v", node.Entity.Value, err)
	}

	groups := make([]domain.DiscoveryGroup, 0, 4)

	if orgs := contactFields(info, func(c *whoisparser.Contact) string { return c.Organization }); len(orgs) > 0 {
		groups = append(groups, group("whois-org", "WHOIS organization", domain.EntityTypeOrganization, orgs))
	}
	if names := contactFields(info, func(c *whoisparser.Contact) string { return c.Name }); len(names) > 0 {
		groups = append(groups, group("whois-person", "WHOIS registrant name", domain.EntityTypePerson, names))
	}
	if emails := contactFields(info, func(c *whoisparser.Contact) string { return c.Email }); len(emails) > 0 {
		groups = append(groups, group("whois-email", "WHOIS contact email", domain.EntityTypeEmail, emails))
	}
	if phones := contactFields(info, func(c *whoisparser.Contact) string { return c.Phone }); len(phones) > 0 {
		groups = append(groups, group("whois-phone", "WHOIS contact phone", domain.EntityTypePhone, phones))
	}

	if info.Domain != nil && len(info.Domain.NameServers) > 0 {
		servers := make([]string, 0, len(info.Domain.NameServers))
		for _, ns := range info.Domain.NameServers {
			ns = validator.NormalizeDomain(ns)
			if validator.IsDomain(ns) {
				servers = append(servers, ns)
			}
		}
		if len(servers) > 0 {
			groups = append(groups, group("whois-ns", "NS servers for domain", domain.EntityTypeDomain, servers))
		}
	}

	s.logger.Debug("whois parsed", "domain", node.Entity.Value, "groups", len(groups))
	return groups, nil
}

// Fetch retorna el grupo tal cual: Discover ya entrega las listas completas.
func (s *Source) Fetch(ctx context.Context, node *domain.Node, g domain.DiscoveryGroup) ([]domain.DiscoveryGroup, error) {
	return []domain.DiscoveryGroup{g}, nil
}

// Close implementa ports.DiscoverySource.
func (s *Source) Close() error {
	return nil
}

func group(id, field string, t domain.EntityType, items []string) domain.DiscoveryGroup {
	return domain.DiscoveryGroup{
		ID:          id,
		SearchField: field,
		Type:        t,
		Count:       len(items),
		Items:       items,
	}
}

// contactFields extrae un campo de todos los contactos del registro,
// deduplicando y descartando valores vacíos o censurados.
func contactFields(info whoisparser.WhoisInfo, field func(*whoisparser.Contact) string) []string {
	contacts := []*whoisparser.Contact{
		info.Registrant,
		info.Administrative,
		info.Technical,
		info.Billing,
	}

	seen := make(map[string]bool)
	values := make([]string, 0, len(contacts))
	for _, c := range contacts {
		if c == nil {
			continue
		}
		v := strings.TrimSpace(field(c))
		if v == "" || isRedacted(v) {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, v)
	}
	return values
}

// isRedacted filtra los placeholders de privacidad habituales en WHOIS.
func isRedacted(v string) bool {
	lower := strings.ToLower(v)
	for _, marker := range []string{"redacted", "privacy", "not disclosed", "withheld", "gdpr"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
