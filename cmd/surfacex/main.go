// cmd/surfacex/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"surfacex/internal/adapters/aiclassifier"
	"surfacex/internal/adapters/dnsgrid"
	"surfacex/internal/adapters/netlas"
	"surfacex/internal/adapters/output"
	"surfacex/internal/adapters/whois"
	"surfacex/internal/core/domain"
	"surfacex/internal/core/ports"
	"surfacex/internal/core/usecases"
	"surfacex/internal/platform/config"
	"surfacex/internal/platform/logx"
	"surfacex/internal/platform/ui"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// 1. Load centralized config (env + flags)
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration load failed: %v\n", err)
		os.Exit(2)
	}

	if cfg.PrintVersion {
		fmt.Printf("surfacex %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	// 2. Shared logger
	logger := buildLogger(cfg)

	logger.Info("SurfaceX starting",
		"version", version,
		"target", cfg.Target,
		"max_nodes", cfg.MaxNodes,
		"workers", cfg.Workers,
	)

	// 3. Context and signals for clean shutdown
	ctx, cancel := rootContextWithSignals(cfg.TimeoutS)
	defer cancel()

	// 4. Build target
	target := domain.NewTarget(cfg.Target, cfg.MaxNodes)
	if err := target.Validate(); err != nil {
		logger.Err(err, "phase", "validation")
		os.Exit(2)
	}

	// 5. Build discovery sources
	sources, err := buildSources(cfg, logger)
	if err != nil {
		logger.Err(err, "phase", "source-build")
		os.Exit(2)
	}
	defer func() {
		for _, src := range sources {
			if cerr := src.Close(); cerr != nil {
				logger.Warn("failed to close source",
					"source", src.Name(),
					"error", cerr.Error(),
				)
			}
		}
	}()

	// 6. Build the decision classifier
	classifier, err := aiclassifier.New(aiclassifier.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		Root:    target.Root,
		Timeout: cfg.OpenAI.Timeout,
	}, logger)
	if err != nil {
		logger.Err(err, "phase", "classifier-build")
		os.Exit(2)
	}
	defer classifier.Close()

	// 7. Presenter
	var presenter ports.Presenter = ui.NewNoopPresenter()
	if !cfg.Silent && !cfg.Debug {
		presenter = ui.NewPTermPresenter(cfg.Verbose)
	}

	// 8. Build and run the expansion engine
	engine, err := usecases.NewEngine(usecases.EngineOptions{
		Target:     *target,
		Sources:    sources,
		Classifier: classifier,
		Presenter:  presenter,
		Logger:     logger,
		Workers:    cfg.Workers,
	})
	if err != nil {
		logger.Err(err, "phase", "engine-build")
		os.Exit(2)
	}

	start := time.Now()
	result, runErr := engine.Run(ctx)
	elapsed := time.Since(start)

	if runErr != nil {
		logger.Err(runErr, "phase", "run", "elapsed_ms", elapsed.Milliseconds())
		// Continue to emit partial results (useful in pipelines)
	}

	// 9. Write outputs
	if result != nil {
		if err := writeOutputs(cfg, result, logger); err != nil {
			logger.Err(err, "phase", "output")
			os.Exit(1)
		}

		logger.Info("SurfaceX finished",
			"elapsed_ms", elapsed.Milliseconds(),
			"entities", result.TotalEntities(),
			"processed", result.Metadata.ProcessedNodes,
			"warnings", len(result.Warnings),
		)
	}

	if runErr != nil {
		os.Exit(1)
	}
}

// buildLogger configura el logger según los flags de verbosidad.
func buildLogger(cfg config.Config) logx.Logger {
	switch {
	case cfg.Silent:
		return logx.NewWithLevel(logx.LevelError)
	case cfg.Debug:
		return logx.NewWithLevel(logx.LevelDebug)
	case cfg.Verbose:
		return logx.NewWithLevel(logx.LevelInfo)
	default:
		return logx.New()
	}
}

// buildSources construye las fuentes de descubrimiento habilitadas.
// Netlas es la fuente principal; WHOIS y DNS son suplementarias.
func buildSources(cfg config.Config, logger logx.Logger) ([]ports.DiscoverySource, error) {
	sources := make([]ports.DiscoverySource, 0, 3)

	nl, err := netlas.New(netlas.Config{
		APIKey:  cfg.Netlas.APIKey,
		BaseURL: cfg.Netlas.BaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build netlas source: %w", err)
	}
	sources = append(sources, nl)

	if cfg.WhoisEnabled {
		sources = append(sources, whois.New(0, logger))
	}
	if cfg.DNSEnabled {
		sources = append(sources, dnsgrid.New(dnsgrid.Config{}, logger))
	}

	logger.Debug("sources built", "count", len(sources))
	return sources, nil
}

// writeOutputs emite el snapshot final según la configuración.
func writeOutputs(cfg config.Config, result *domain.SurfaceResult, logger logx.Logger) error {
	if cfg.OutputDir != "" {
		path, err := output.OutputYAMLFile(cfg.OutputDir, result)
		if err != nil {
			return err
		}
		logger.Info("snapshot written", "path", path)
	}

	if cfg.NoResults {
		return nil
	}

	if cfg.Verbose {
		if err := output.OutputTable(result); err != nil {
			return err
		}
	}
	return output.OutputYAML(result)
}

// rootContextWithSignals crea el contexto raíz cancelable por señal y,
// opcionalmente, por timeout global.
func rootContextWithSignals(timeoutS int) (context.Context, context.CancelFunc) {
	ctx := context.Background()

	var cancel context.CancelFunc
	if timeoutS > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutS)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
