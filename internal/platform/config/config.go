// internal/platform/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Config agrupa toda la configuración de una ejecución de SurfaceX.
type Config struct {
	// App
	Target       string // dominio raíz, argumento posicional
	MaxNodes     int    // techo de nodos a procesar (0 = sin límite)
	Workers      int    // fan-out de consultas de descubrimiento por nodo
	TimeoutS     int    // timeout global en segundos (0 = sin timeout)
	PrintVersion bool

	// Output
	Verbose   bool
	Silent    bool
	Debug     bool
	NoResults bool
	OutputDir string // directorio para el snapshot YAML ("" = solo stdout)

	// Proveedores externos
	Netlas Netlas
	OpenAI OpenAI

	// Fuentes locales suplementarias
	WhoisEnabled bool
	DNSEnabled   bool
}

// Netlas configura el proveedor de datos de descubrimiento.
type Netlas struct {
	APIKey  string
	BaseURL string
}

// OpenAI configura el clasificador de decisiones.
type OpenAI struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		MaxNodes: 0, // sin límite salvo configuración explícita
		Workers:  4,
		TimeoutS: 0,

		Netlas: Netlas{
			BaseURL: "https://app.netlas.io",
		},
		OpenAI: OpenAI{
			Model:   "gpt-4.1",
			Timeout: 30 * time.Second,
		},

		WhoisEnabled: true,
		DNSEnabled:   true,
	}
}

// Load inicializa la configuración: ENV sobre defaults, luego flags
// (los flags tienen prioridad). Valida antes de retornar: una
// configuración inválida falla aquí, nunca a mitad de ejecución.
func Load(args []string) (Config, error) {
	cfg := DefaultConfig()

	if err := loadFromEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := loadFromFlags(&cfg, args); err != nil {
		return cfg, err
	}

	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) error {
	cfg.Netlas.APIKey = getenv("NETLAS_API_KEY", cfg.Netlas.APIKey)
	cfg.Netlas.BaseURL = getenv("NETLAS_BASE_URL", cfg.Netlas.BaseURL)
	cfg.OpenAI.APIKey = getenv("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.Model = getenv("OPENAI_MODEL", cfg.OpenAI.Model)

	if v := getenv("MAX_NODES_TO_PROCESS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_NODES_TO_PROCESS: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("MAX_NODES_TO_PROCESS must be positive, got %d (unset it for an unbounded run)", n)
		}
		cfg.MaxNodes = n
	}
	if v := getenv("SURFACEX_WORKERS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SURFACEX_WORKERS: %w", err)
		}
		cfg.Workers = n
	}

	return nil
}

// loadFromFlags parsea los flags de línea de comandos sobre cfg.
func loadFromFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("surfacex", pflag.ContinueOnError)

	fs.IntVar(&cfg.MaxNodes, "max-nodes", cfg.MaxNodes,
		"Maximum number of nodes to expand (0 = unbounded)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers,
		"Concurrent discovery queries per node")
	fs.IntVar(&cfg.TimeoutS, "timeout", cfg.TimeoutS,
		"Global run timeout in seconds (0 = none)")
	fs.StringVarP(&cfg.OutputDir, "output", "o", cfg.OutputDir,
		"Directory for the YAML snapshot (default: stdout only)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false,
		"Enable verbose output, including detailed messages")
	fs.BoolVarP(&cfg.Silent, "silent", "s", false,
		"Suppress all output except results")
	fs.BoolVarP(&cfg.Debug, "debug", "d", false,
		"Output only error messages")
	fs.BoolVar(&cfg.NoResults, "no-results", false,
		"Suppress printing of final results")
	fs.BoolVar(&cfg.WhoisEnabled, "whois", cfg.WhoisEnabled,
		"Enable the local WHOIS discovery source")
	fs.BoolVar(&cfg.DNSEnabled, "dns", cfg.DNSEnabled,
		"Enable the local DNS discovery source")
	fs.BoolVar(&cfg.PrintVersion, "version", false,
		"Print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: surfacex [flags] DOMAIN\n\n")
		fmt.Fprintf(os.Stderr, "Maps the attack surface of an organization starting from a root domain.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() > 0 {
		cfg.Target = fs.Arg(0)
	}

	// Un techo explícito debe ser positivo; la ausencia de flag expresa
	// la ejecución sin límite, no el cero.
	if fs.Changed("max-nodes") && cfg.MaxNodes <= 0 {
		return fmt.Errorf("--max-nodes must be positive, got %d (omit the flag for an unbounded run)", cfg.MaxNodes)
	}

	return nil
}

// normalize limpia valores tras la carga.
func normalize(cfg *Config) {
	cfg.Target = strings.TrimSpace(cfg.Target)
	cfg.Netlas.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Netlas.BaseURL), "/")
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	// Silent gana a verbose/debug
	if cfg.Silent {
		cfg.Verbose = false
		cfg.Debug = false
	}
}

// Validate verifica la configuración completa.
// Un techo negativo es un error de configuración, no se ignora.
func (c *Config) Validate() error {
	if c.PrintVersion {
		return nil
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("max-nodes must be positive or zero (unbounded), got %d", c.MaxNodes)
	}
	if c.Netlas.APIKey == "" {
		return fmt.Errorf("the NETLAS_API_KEY environment variable is not set")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("the OPENAI_API_KEY environment variable is not set")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}
