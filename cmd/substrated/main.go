// Command substrated wires the dimensional computation core's process-wide
// state — the substrate registry, relationship graph, and SRL table — and
// exposes it through a single Gateway, mirroring the teacher's
// cmd/appserver's flag-driven bootstrap and signal-based graceful shutdown.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/r3e-network/substrate-core/gateway"
	"github.com/r3e-network/substrate-core/internal/coreconfig"
	"github.com/r3e-network/substrate-core/internal/obslog"
	"github.com/r3e-network/substrate-core/persistence"
	"github.com/r3e-network/substrate-core/relgraph"
	"github.com/r3e-network/substrate-core/seed"
	"github.com/r3e-network/substrate-core/srl"
	"github.com/r3e-network/substrate-core/substrate"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration override")
	seedDir := flag.String("seed-dir", "", "directory of seed catalog YAML files (overrides config/env)")
	dsn := flag.String("dsn", "", "PostgreSQL DSN for the persistence mirror (overrides config/env; disabled when empty)")
	runMigrations := flag.Bool("migrate", true, "apply embedded database migrations on startup (ignored when dsn is empty)")
	flag.Parse()

	cfg, err := coreconfig.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	if trimmed := strings.TrimSpace(*configPath); trimmed != "" {
		if err := coreconfig.ApplyYAMLOverride(cfg, trimmed); err != nil {
			log.Fatalf("apply config override %s: %v", trimmed, err)
		}
	}
	if trimmed := strings.TrimSpace(*seedDir); trimmed != "" {
		cfg.Seed.Directory = trimmed
	}
	if trimmed := strings.TrimSpace(*dsn); trimmed != "" {
		cfg.Database.DSN = trimmed
	}

	logger := obslog.New("substrated", cfg.Logging.Level, cfg.Logging.Format)

	registry := substrate.NewRegistry(cfg.Graph.ShardCount, 1024)
	graph := relgraph.New(cfg.Graph.ShardCount, registry)

	loader := seed.NewLoader(registry, graph)
	if err := loadSeeds(loader, cfg.Seed.Directory); err != nil {
		log.Fatalf("load seed catalog: %v", err)
	}
	for _, pending := range loader.ResolveRelationships() {
		logger.WithFields(logrus.Fields{"from": pending.From, "target": pending.Target, "kind": pending.Kind}).
			Warn("seed relationship target unresolved")
	}

	keyDeriver, err := srl.KeyDeriverFromEnv()
	if err != nil {
		log.Fatalf("derive SRL credential key: %v", err)
	}
	adapters := srl.NewDefaultAdapters(srl.DefaultHTTPAdapterConfig(), nil)
	fetchLog := srl.NewFetchLog()
	srlTable := srl.NewTable(adapters, keyDeriver, fetchLog, registry, graph, cfg.SRL.FailureThreshold)

	reconnector := srl.NewReconnector(srlTable, cfg.SRL.ReconnectInterval)
	if err := reconnector.Start(); err != nil {
		log.Fatalf("start SRL reconnector: %v", err)
	}
	defer reconnector.Stop()

	var store *persistence.Store
	if strings.TrimSpace(cfg.Database.DSN) != "" {
		rootCtx := context.Background()
		db, err := persistence.Open(rootCtx, cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			log.Fatalf("connect to postgres: %v", err)
		}
		defer db.Close()

		if *runMigrations || cfg.Database.MigrateOnStart {
			if err := persistence.Migrate(db); err != nil {
				log.Fatalf("apply migrations: %v", err)
			}
		}
		store = persistence.NewStore(db)
		mirrorSeedsToStore(context.Background(), store, registry, graph, logger)
	}

	gw := gateway.New(*cfg, logger, registry, graph, srlTable)

	logger.WithFields(logrus.Fields{
		"shard_count":  cfg.Graph.ShardCount,
		"seed_dir":     cfg.Seed.Directory,
		"observations": len(gw.ObservationLog().Entries()),
	}).Info("substrated ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if store != nil {
		mirrorSeedsToStore(shutdownCtx, store, registry, graph, logger)
	}

	logger.Info("substrated shutting down")
}

// mirrorSeedsToStore persists every registered substrate and every graph
// relationship whose kind is listed in allRelationshipKinds, so a fresh
// process can audit what a prior run's seed catalog resolved to without
// re-parsing the seed files. Relationships of any other kind (for example
// seed relationships declared with free-form kind names) are not mirrored.
func mirrorSeedsToStore(ctx context.Context, store *persistence.Store, registry *substrate.Registry, graph *relgraph.Graph, logger *obslog.Logger) {
	registry.Iter(func(sub *substrate.Substrate) {
		if err := store.SaveSubstrate(ctx, sub); err != nil {
			logger.WithFields(logrus.Fields{"error": err, "identity": sub.Identity()}).Warn("failed to mirror substrate")
		}
	})

	for _, kind := range allRelationshipKinds {
		for _, rel := range graph.EdgesOfKind(kind) {
			if err := store.SaveRelationship(ctx, rel); err != nil {
				logger.WithFields(logrus.Fields{"error": err, "relationship": rel}).Warn("failed to mirror relationship")
			}
		}
	}
}

var allRelationshipKinds = []relgraph.Kind{
	relgraph.KindPartOfWhole, relgraph.KindWholeOfPart, relgraph.KindSibling,
	relgraph.KindContainment, relgraph.KindOrdering,
	relgraph.KindAttribute, relgraph.KindDependency, relgraph.KindAdjacency, relgraph.KindAggregation,
	relgraph.KindBoundary, relgraph.KindCycle, relgraph.KindRecursion, relgraph.KindLineage,
	relgraph.KindEmbedding, relgraph.KindExtraction, relgraph.KindOrthogonal,
	relgraph.KindInverseOf,
}

func loadSeeds(loader *seed.Loader, dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") && !strings.HasSuffix(entry.Name(), ".yml") {
			continue
		}
		if err := loader.LoadFile(dir + "/" + entry.Name()); err != nil {
			return err
		}
	}
	return nil
}
