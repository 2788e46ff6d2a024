// Command figmentator-server is the gateway's HTTP entry point: it loads
// configuration from the environment, builds one scheduler per
// configured suggestion type, and serves the HTTP surface until it
// receives a termination signal.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/storium/figmentator/internal/cache"
	"github.com/storium/figmentator/internal/config"
	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/httpapi"
	"github.com/storium/figmentator/internal/pool"
	"github.com/storium/figmentator/internal/registry"
	"github.com/storium/figmentator/internal/resource"
	"github.com/storium/figmentator/internal/scheduler"
	"github.com/storium/figmentator/internal/schedulers"

	_ "github.com/storium/figmentator/internal/stubmodel"
)

func main() {
	logger := config.NewLogger(config.EnvBool("DEBUG", false))

	if err := run(logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(logger hclog.Logger) error {
	store, err := cache.Open(config.EnvString("FIG_CACHE_URL", ""))
	if err != nil {
		return err
	}

	factoryCfg, err := config.LoadFactoryConfig()
	if err != nil {
		return err
	}
	if len(factoryCfg) == 0 {
		// Out of the box the gateway serves every compiled-in model
		// rather than nothing at all.
		types := registry.Types()
		for _, t := range types {
			factoryCfg[t] = config.FigmentatorConfig{}
		}
		logger.Info("no figmentators configured, using built-in models", "types", types)
	}

	collection := schedulers.New(logger)
	for t, cfg := range factoryCfg {
		settings := config.SchedulerSettingsFor(t)

		newPool, err := poolFactory(logger, t, cfg, settings.NumWorkers)
		if err != nil {
			return err
		}

		res := resource.New(logger.Named(string(t)), newPool, cfg.Properties)
		collection.Register(t, scheduler.New(logger.Named(string(t)), settings, res))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collection.Startup(ctx)
	defer collection.Shutdown(context.Background())

	app := httpapi.New(logger, collection, store)
	srv := &http.Server{
		Addr:    config.EnvString("FIG_HTTP_ADDR", ":8080"),
		Handler: app.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// poolFactory builds the resource.PoolFactory for a FigmentatorConfig:
// "process" runs the model out-of-process via ProcessPool; anything else
// resolves the suggestion type through the static registry and runs it
// in-process.
func poolFactory(logger hclog.Logger, t figmodel.SuggestionType, cfg config.FigmentatorConfig, numWorkers int) (resource.PoolFactory, error) {
	switch cfg.Class {
	case "process":
		if len(cfg.Requires) == 0 {
			return nil, errProcessRequiresCommand(t)
		}
		cmd := cfg.Requires[0]
		args := append([]string{"-suggestion-type", string(t)}, cfg.Requires[1:]...)
		return func() pool.WorkerPool {
			return pool.NewProcessPool(logger.Named("pool"), numWorkers, cmd, args...)
		}, nil
	default:
		if _, err := registry.New(t); err != nil {
			return nil, err
		}
		return func() pool.WorkerPool {
			return pool.NewInProcessPool(numWorkers, func() figmodel.Model {
				m, err := registry.New(t)
				if err != nil {
					// Types with no registered constructor never reach
					// here: LoadFactoryConfig only names types the
					// operator configured, and an unconfigured Class
					// falls back to the registry which is validated
					// against the requested type before Startup runs.
					panic(err)
				}
				return m
			})
		}, nil
	}
}

func errProcessRequiresCommand(t figmodel.SuggestionType) error {
	return &processConfigError{suggestionType: t}
}

type processConfigError struct {
	suggestionType figmodel.SuggestionType
}

func (e *processConfigError) Error() string {
	return "figmentator-server: suggestion type " + string(e.suggestionType) +
		` configured with cls="process" but no "requires" command was given`
}
