// Command indexer runs the POI enrichment pipeline once: it drains the
// admin set from the search backend, builds the in-memory geofinder, reads
// raw POIs from the OSM database (and, if configured, a gzipped feed file),
// resolves each one's address and admin stack, and pushes the result to the
// searchable/hidden datasets. Startup is a numbered sequence of steps that
// fails fast on the first error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/munin/poi-pipeline/internal/config"
	"github.com/munin/poi-pipeline/internal/geofinder"
	"github.com/munin/poi-pipeline/internal/locator"
	"github.com/munin/poi-pipeline/internal/pipeline"
	"github.com/munin/poi-pipeline/internal/pkg/logger"
	"github.com/munin/poi-pipeline/internal/poi"
	"github.com/munin/poi-pipeline/internal/repository/postgresosm"
	"github.com/munin/poi-pipeline/internal/searchclient/httpclient"
	"github.com/munin/poi-pipeline/internal/sink"
	"github.com/munin/poi-pipeline/internal/source/feed"
	osmsource "github.com/munin/poi-pipeline/internal/source/osm"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting POI enrichment indexer",
		zap.String("searchable_dataset", cfg.Pipeline.SearchableDataset),
		zap.String("hidden_dataset", cfg.Pipeline.HiddenDataset))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to OSM PostgreSQL (planet_osm_* tables)
	osmDB, err := postgresosm.New(&cfg.OSMDB, log)
	if err != nil {
		log.Fatal("Failed to connect to OSM PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := osmDB.Close(); err != nil {
			log.Error("Failed to close OSM PostgreSQL connection", zap.Error(err))
		}
	}()

	healthCtx, healthCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := osmDB.Health(healthCtx); err != nil {
		log.Fatal("OSM PostgreSQL health check failed", zap.Error(err))
	}
	healthCancel()
	log.Info("OSM PostgreSQL connected and healthy")

	// 4. Connect to the search backend (admin drain, reverse-geocode queries, push)
	client := httpclient.New(cfg.Pipeline.BackendURL, cfg.Pipeline.DatasetPrefix, cfg.Pipeline.AdminIndex)

	// 5. Build the in-memory geofinder from the admin set
	admins, err := client.DrainAdmins(ctx)
	if err != nil {
		log.Fatal("Failed to drain admins from search backend", zap.Error(err))
	}
	gf := geofinder.New()
	for _, a := range admins {
		gf.Insert(a)
	}
	log.Info("Geofinder built", zap.Int("admin_count", len(admins)))

	// 6. Build the deny-list (config override, falling back to the default)
	denyPairs := make([]locator.Pair, len(cfg.Pipeline.Denylist))
	for i, p := range cfg.Pipeline.Denylist {
		denyPairs[i] = locator.Pair{MappingKey: p.MappingKey, Subclass: p.Subclass}
	}
	denylist := locator.DefaultDenyList
	if len(denyPairs) > 0 {
		denylist = denyPairs
	}

	// 7. Wire the locator
	loc := locator.New(gf, locator.Options{
		SkipReverse: cfg.Pipeline.SkipReverse,
		Denylist:    locator.NewDenyList(denylist),
	})

	// 8. Wire the fan-out sinks and start draining them into the backend
	searchableSink := sink.New(cfg.Pipeline.SearchableDataset, sink.DefaultCapacity)
	hiddenSink := sink.New(cfg.Pipeline.HiddenDataset, sink.DefaultCapacity)

	drainErrs := make(chan error, 2)
	go func() { drainErrs <- searchableSink.Drain(ctx, log, client) }()
	go func() { drainErrs <- hiddenSink.Drain(ctx, log, client) }()

	// 9. Build the pipeline stage
	stage := pipeline.New(loc, client, log, searchableSink, hiddenSink, pipeline.Options{
		ChunkSize:         pipeline.DefaultChunkSize,
		ConcurrentBlocks:  cfg.Pipeline.ConcurrentBlocks,
		MaxQueryBatchSize: cfg.Pipeline.MaxQueryBatchSize,
		LogInterval:       cfg.Pipeline.LogIndexedCountInterval,
	})

	// 10. Merge every configured source into one input channel
	input := make(chan poi.PoiInput)
	sourceErrs := make(chan error, 2)
	var sourcesRunning int

	osmQuery := osmsource.DefaultPoisQuery(pipelineBBox(cfg))
	osmOut, osmErrc := osmsource.New(osmDB.DB, log).Stream(ctx, osmQuery)
	sourcesRunning++
	go forwardSource(osmOut, osmErrc, input, sourceErrs)

	if cfg.Pipeline.FeedPath != "" {
		f, err := os.Open(cfg.Pipeline.FeedPath)
		if err != nil {
			log.Fatal("Failed to open feed file", zap.Error(err))
		}
		defer f.Close()
		feedOut, feedErrc := feed.Stream(ctx, f, gf, log)
		sourcesRunning++
		go forwardSource(feedOut, feedErrc, input, sourceErrs)
	}

	go func() {
		for i := 0; i < sourcesRunning; i++ {
			if err := <-sourceErrs; err != nil {
				log.Error("Source stream error", zap.Error(err))
			}
		}
		close(input)
	}()

	// 11. Run the stage to completion (closes both sinks when input drains)
	stageErr := make(chan error, 1)
	go func() { stageErr <- stage.Run(ctx, input) }()

	// 12. Graceful shutdown on signal, otherwise wait for natural completion
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("Received shutdown signal")
		cancel()
	case err := <-stageErr:
		if err != nil {
			log.Error("Pipeline stage ended with error", zap.Error(err))
		}
	}

	if err := <-drainErrs; err != nil {
		log.Error("Sink drain ended with error", zap.Error(err))
	}
	if err := <-drainErrs; err != nil {
		log.Error("Sink drain ended with error", zap.Error(err))
	}

	log.Info("Indexer shutdown complete")
}

func pipelineBBox(cfg *config.Config) *osmsource.BBox {
	if cfg.Pipeline.BoundingBox == nil {
		return nil
	}
	b := cfg.Pipeline.BoundingBox
	return &osmsource.BBox{Lon1: b.Lon1, Lat1: b.Lat1, Lon2: b.Lon2, Lat2: b.Lat2}
}

func forwardSource(out <-chan poi.PoiInput, errc <-chan error, dst chan<- poi.PoiInput, errDst chan<- error) {
	for p := range out {
		dst <- p
	}
	errDst <- <-errc
}
