// internal/platform/validator/validator.go
package validator

import (
	"net"
	"regexp"
	"strings"
)

// Domain validators

var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)

// IsDomain verifica si un string es un dominio válido.
// Soporta dominios internacionales en punycode.
func IsDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}

	if !domainRegex.MatchString(domain) {
		return false
	}

	// Verificar que no sea una IP
	if net.ParseIP(domain) != nil {
		return false
	}

	return true
}

// IsSubdomainOf verifica si subdomain es un subdominio válido de baseDomain.
func IsSubdomainOf(subdomain, baseDomain string) bool {
	subdomain = NormalizeDomain(subdomain)
	baseDomain = NormalizeDomain(baseDomain)

	if subdomain == baseDomain {
		return false
	}

	return strings.HasSuffix(subdomain, "."+baseDomain)
}

// NormalizeDomain normaliza un dominio a su forma canónica:
// minúsculas, sin espacios, sin punto final. Idempotente.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimSuffix(domain, ".")
	return domain
}

// Email validators

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsEmail valida formato de email (RFC 5322 simplificado).
func IsEmail(email string) bool {
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// NormalizeEmail normaliza un email a su forma canónica. Idempotente.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Network validators

// IsIP verifica si un string es una dirección IP válida (v4 o v6).
func IsIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// IsIPv4 verifica si un string es una dirección IPv4 válida.
func IsIPv4(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.To4() != nil
}

// NormalizeIP normaliza una IP a su forma texto canónica.
// Valores que no parsean como IP pasan sin cambios (solo trim):
// el proveedor puede emitir formas que no reconocemos localmente.
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ip
	}
	return parsed.String()
}

// NormalizeIPRange normaliza un rango en notación CIDR.
// Rangos no parseables pasan sin cambios.
func NormalizeIPRange(r string) string {
	r = strings.TrimSpace(r)
	_, network, err := net.ParseCIDR(r)
	if err != nil {
		return r
	}
	return network.String()
}
