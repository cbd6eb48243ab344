// internal/core/domain/entity_types.go
package domain

// EntityType representa los diferentes tipos de entidades que pueden ser descubiertas.
// Los valores string corresponden a los tipos aceptados por la Discovery API.
type EntityType string

// Tipos de entidad - Infraestructura de red
const (
	// EntityTypeDomain representa un dominio registrable
	EntityTypeDomain EntityType = "domain"

	// EntityTypeSubdomain representa un subdominio del dominio raíz
	EntityTypeSubdomain EntityType = "subdomain"

	// EntityTypeIP representa una dirección IP (v4 o v6)
	EntityTypeIP EntityType = "ip"

	// EntityTypeIPRange representa un rango de direcciones IP
	EntityTypeIPRange EntityType = "ip-range"

	// EntityTypeASN representa un Autonomous System Number
	EntityTypeASN EntityType = "asn"

	// EntityTypeASName representa el nombre de un Autonomous System
	EntityTypeASName EntityType = "as_name"

	// EntityTypeNetworkName representa el nombre de una red asignada
	EntityTypeNetworkName EntityType = "network_name"

	// EntityTypeMailserver representa un servidor de correo (MX)
	EntityTypeMailserver EntityType = "mailserver"

	// EntityTypeDNSTXT representa un registro DNS TXT
	EntityTypeDNSTXT EntityType = "dns_txt"
)

// Tipos de entidad - Identidad y fingerprinting
const (
	// EntityTypeOrganization representa una organización registrante
	EntityTypeOrganization EntityType = "organization"

	// EntityTypePerson representa una persona de contacto
	EntityTypePerson EntityType = "person"

	// EntityTypeEmail representa una dirección de correo
	EntityTypeEmail EntityType = "email"

	// EntityTypePhone representa un número de teléfono de contacto
	EntityTypePhone EntityType = "phone"

	// EntityTypeAddress representa una dirección postal
	EntityTypeAddress EntityType = "address"

	// EntityTypeWhoisField representa un campo WHOIS genérico
	EntityTypeWhoisField EntityType = "whois_field"

	// EntityTypeHTTPTracker representa un identificador de tracker HTTP
	// (Google Analytics, Tag Manager, etc.)
	EntityTypeHTTPTracker EntityType = "http_tracker"

	// EntityTypeFavicon representa un hash de favicon
	EntityTypeFavicon EntityType = "favicon"

	// EntityTypeJARM representa un fingerprint JARM de TLS
	EntityTypeJARM EntityType = "jarm"

	// EntityTypeCertificate representa un certificado TLS
	EntityTypeCertificate EntityType = "certificate"

	// EntityTypeText representa un fragmento de texto libre
	EntityTypeText EntityType = "text"

	// EntityTypeOther agrupa tipos desconocidos devueltos por el proveedor.
	// El engine los trata como opacos: se deduplican y exploran igual que el resto.
	EntityTypeOther EntityType = "other"
)

// knownEntityTypes contiene todos los tipos reconocidos localmente.
var knownEntityTypes = map[EntityType]bool{
	EntityTypeDomain:       true,
	EntityTypeSubdomain:    true,
	EntityTypeIP:           true,
	EntityTypeIPRange:      true,
	EntityTypeASN:          true,
	EntityTypeASName:       true,
	EntityTypeNetworkName:  true,
	EntityTypeMailserver:   true,
	EntityTypeDNSTXT:       true,
	EntityTypeOrganization: true,
	EntityTypePerson:       true,
	EntityTypeEmail:        true,
	EntityTypePhone:        true,
	EntityTypeAddress:      true,
	EntityTypeWhoisField:   true,
	EntityTypeHTTPTracker:  true,
	EntityTypeFavicon:      true,
	EntityTypeJARM:         true,
	EntityTypeCertificate:  true,
	EntityTypeText:         true,
	EntityTypeOther:        true,
}

// IsKnown indica si el tipo es uno de los tipos reconocidos localmente.
// Tipos no reconocidos siguen siendo válidos: pasan por el engine como opacos.
func (t EntityType) IsKnown() bool {
	return knownEntityTypes[t]
}

// String retorna la representación string del tipo.
func (t EntityType) String() string {
	return string(t)
}

// ParseEntityType convierte un string del proveedor en un EntityType.
// Strings vacíos se mapean a EntityTypeOther; el resto pasa tal cual,
// conocido o no.
func ParseEntityType(s string) EntityType {
	if s == "" {
		return EntityTypeOther
	}
	return EntityType(s)
}

// expandPriority define el orden de procesamiento por tipo de nodo.
// Tipos con conexiones más fuertes (trackers, favicons, datos de registrante)
// se expanden antes; menor valor = mayor prioridad.
var expandPriority = map[EntityType]int{
	EntityTypeHTTPTracker:  0,
	EntityTypeFavicon:      1,
	EntityTypeOrganization: 2,
	EntityTypePerson:       3,
	EntityTypeEmail:        4,
	EntityTypePhone:        5,
	EntityTypeAddress:      6,
	EntityTypeNetworkName:  7,
	EntityTypeASName:       8,
	EntityTypeDomain:       9,
	EntityTypeDNSTXT:       10,
	EntityTypeIP:           11,
	EntityTypeText:         12,
	EntityTypeIPRange:      13,
	EntityTypeASN:          14,
	EntityTypeJARM:         15,
}

// ExpandPriority retorna la prioridad de expansión del tipo.
// Tipos sin prioridad definida se procesan al final.
func (t EntityType) ExpandPriority() int {
	if p, ok := expandPriority[t]; ok {
		return p
	}
	return 99
}
