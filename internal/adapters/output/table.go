// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"surfacex/internal/core/domain"
)

// WriteTable imprime un resumen legible de la ejecución sobre el writer dado.
func WriteTable(w io.Writer, result *domain.SurfaceResult) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)

	// Header con información de la ejecución
	fmt.Fprintf(tw, "\n=== SurfaceX Discovery Results ===\n")
	fmt.Fprintf(tw, "Target:\t%s\n", result.Target.Root)
	fmt.Fprintf(tw, "Duration:\t%s\n", result.Metadata.Duration)
	fmt.Fprintf(tw, "Processed nodes:\t%d\n", result.Metadata.ProcessedNodes)
	if result.Metadata.BudgetExhausted {
		fmt.Fprintf(tw, "Stopped early:\t%d nodes left unprocessed (budget %d)\n",
			result.Metadata.SkippedNodes, result.Metadata.Budget)
	}
	fmt.Fprintf(tw, "Entities:\t%d\n", result.TotalEntities())
	fmt.Fprintf(tw, "Sources:\t%s\n\n", strings.Join(result.Metadata.SourcesUsed, ", "))

	// Tabla de entidades por tipo
	if result.TotalEntities() > 0 {
		fmt.Fprintln(tw, "TYPE\tCOUNT\tSAMPLE")
		fmt.Fprintln(tw, "----\t-----\t------")

		types := make([]string, 0, len(result.Entities))
		for t := range result.Entities {
			types = append(types, string(t))
		}
		sort.Strings(types)

		for _, t := range types {
			values := result.Entities[domain.EntityType(t)]
			fmt.Fprintf(tw, "%s\t%d\t%s\n", t, len(values), sample(values, 3))
		}
	} else {
		fmt.Fprintln(tw, "No entities discovered.")
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}

	// Warnings
	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", len(result.Warnings))
		for i, warning := range result.Warnings {
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, warning.Source, warning.Message)
		}
	}

	fmt.Fprintln(w)
	return nil
}

// OutputTable imprime el resumen a stdout.
func OutputTable(result *domain.SurfaceResult) error {
	return WriteTable(os.Stdout, result)
}

// sample retorna los primeros valores, abreviados para la tabla.
func sample(values []string, n int) string {
	if len(values) <= n {
		return strings.Join(values, ", ")
	}
	return strings.Join(values[:n], ", ") + ", …"
}
