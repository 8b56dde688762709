// Package lookup parses lookup service flags and launches the MCP service.
package lookup

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/louisbranch/grimoire.space/internal/platform/cmd"
	lookupmcp "github.com/louisbranch/grimoire.space/internal/services/lookup/api/mcp"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage/compendium"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage/sqlite"
)

// Config holds lookup command configuration.
type Config struct {
	Transport            string  `env:"GRIMOIRE_SPACE_LOOKUP_TRANSPORT" envDefault:"stdio"`
	HTTPAddr             string  `env:"GRIMOIRE_SPACE_LOOKUP_HTTP_ADDR" envDefault:"localhost:8081"`
	DBPath               string  `env:"GRIMOIRE_SPACE_LOOKUP_DB_PATH" envDefault:"data/lookup.db"`
	CompendiumDir        string  `env:"GRIMOIRE_SPACE_COMPENDIUM_DIR" envDefault:"data/compendium"`
	PromptTimeoutSeconds int     `env:"GRIMOIRE_SPACE_LOOKUP_PROMPT_TIMEOUT_SECONDS" envDefault:"30"`
	Cutoff               float64 `env:"GRIMOIRE_SPACE_LOOKUP_CUTOFF" envDefault:"0.05"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "MCP transport: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "Bind address for the http transport")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the homebrew SQLite database")
	fs.StringVar(&cfg.CompendiumDir, "compendium", cfg.CompendiumDir, "Directory holding the compendium JSON files")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the lookup MCP service. A compendium that fails to load is fatal.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLookup, func(ctx context.Context) error {
		catalog, err := compendium.Load(cfg.CompendiumDir)
		if err != nil {
			return fmt.Errorf("load compendium: %w", err)
		}

		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open lookup store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close lookup store: %v", err)
			}
		}()

		server := lookupmcp.NewServer(catalog, store, lookupmcp.Config{
			Transport:     lookupmcp.TransportKind(cfg.Transport),
			HTTPAddr:      cfg.HTTPAddr,
			PromptTimeout: time.Duration(cfg.PromptTimeoutSeconds) * time.Second,
			DefaultCutoff: cfg.Cutoff,
		})
		return server.Run(ctx)
	})
}
