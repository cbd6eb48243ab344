// internal/adapters/output/yaml.go
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"surfacex/internal/core/domain"
)

// sanitizeDomainName convierte un nombre de dominio en un nombre de carpeta válido.
// Ejemplo: "example.com" -> "example_com"
func sanitizeDomainName(domain string) string {
	sanitized := strings.ReplaceAll(domain, ".", "_")
	sanitized = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, sanitized)
	return sanitized
}

// snapshotDocument prepara el snapshot para serializar: claves por tipo y
// valores ordenados alfabéticamente, con independencia del orden de admisión.
func snapshotDocument(result *domain.SurfaceResult) map[string][]string {
	doc := make(map[string][]string, len(result.Entities))
	for entityType, values := range result.Entities {
		sorted := make([]string, len(values))
		copy(sorted, values)
		sort.Strings(sorted)
		doc[string(entityType)] = sorted
	}
	return doc
}

// WriteYAML serializa el snapshot en YAML sobre el writer dado.
func WriteYAML(w io.Writer, result *domain.SurfaceResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snapshotDocument(result)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// OutputYAML imprime el snapshot en YAML a stdout.
func OutputYAML(result *domain.SurfaceResult) error {
	return WriteYAML(os.Stdout, result)
}

// OutputYAMLFile exporta el snapshot a un archivo YAML bajo un subdirectorio
// propio del dominio, con timestamp en el nombre.
func OutputYAMLFile(dir string, result *domain.SurfaceResult) (string, error) {
	if dir == "" {
		dir = "."
	}

	fullDir := filepath.Join(dir, sanitizeDomainName(result.Target.Root))
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("surfacex_%s_%s.yaml", result.Target.Root, timestamp)
	path := filepath.Join(fullDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := WriteYAML(f, result); err != nil {
		return "", err
	}
	return path, nil
}
