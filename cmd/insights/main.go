package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"

	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/gen"
	"insights-pipeline/internal/insights/instrument"
	"insights-pipeline/internal/insights/persist"
	"insights-pipeline/internal/insights/pipeline"
	"insights-pipeline/internal/obs"
	"insights-pipeline/pkg/conn"
)

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}

func main() {
	configPath := flag.String("config", "", "Path to pipeline YAML config")
	synthetic := flag.Bool("synthetic", false, "Drive the pipeline with a synthetic trade/tick generator")
	syntheticRate := flag.Duration("synthetic-interval", 200*time.Millisecond, "Interval between synthetic events")
	sinkCapacity := flag.Int("sink-capacity", 1024, "Bounded output queue capacity")
	pgDSN := flag.String("postgres-dsn", "", "Postgres connection string (empty disables persistence, insights print to stdout)")
	profile := flag.Bool("profile", false, "Enable pyroscope continuous profiling")
	flag.Parse()

	if *configPath == "" {
		log.Fatalf("-config is required")
	}

	if *profile {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "insights-pipeline",
			ServerAddress:   "http://localhost:4040",
			Tags:            map[string]string{"env": "local"},
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() { _ = profiler.Stop() }()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	reg, instruments, err := buildRegistry(cfg)
	if err != nil {
		log.Fatalf("registry build failed: %v", err)
	}

	metrics := obs.NewMetrics()
	p, err := pipeline.New(cfg, reg, metrics, *sinkCapacity)
	if err != nil {
		log.Fatalf("pipeline build failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *synthetic {
		go runSynthetic(ctx, p, instruments, *syntheticRate)
	}

	if err := config.Watch(*configPath, func(config.PipelineConfig) {
		log.Printf("config changed on disk: restart required to apply (spec: pipeline topology is immutable at runtime)")
	}, func(err error) {
		log.Printf("config reload validation failed: %v", err)
	}); err != nil {
		log.Printf("config watch disabled: %v", err)
	}

	done := make(chan struct{})
	go func() {
		drainSink(ctx, p, *pgDSN)
		close(done)
	}()

	p.Run(ctx)
	<-done

	snapshot := metrics.Snapshot()
	log.Printf("metrics: node_faults=%d sink_backpressure=%d out_of_order_dropped=%d insight_latency=%+v",
		snapshot.NodeFaults, snapshot.SinkBackpressure, snapshot.OutOfOrderDropped, snapshot.InsightLatency)
}

func buildRegistry(cfg config.PipelineConfig) (*instrument.Registry, []instrument.ID, error) {
	reg := instrument.New()
	var ids []instrument.ID
	venue := reg.AddVenue("synthetic")
	base := reg.AddAsset("BTC")
	quote := reg.AddAsset("USDT")
	id := reg.AddInstrument(instrument.Instrument{
		Symbol:       "BTCUSDT",
		VenueID:      venue,
		Kind:         instrument.KindSpot,
		BaseAssetID:  base,
		QuoteAssetID: quote,
		Status:       instrument.StatusTrading,
	})
	ids = append(ids, id)
	return reg, ids, nil
}

func runSynthetic(ctx context.Context, p *pipeline.Pipeline, instruments []instrument.ID, interval time.Duration) {
	g := gen.NewGenerator(instruments, 100, 1, 1)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	toggle := false
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if toggle {
				p.IngestTrade(g.NextTrade(now))
			} else {
				p.IngestTick(g.NextTick(now))
			}
			toggle = !toggle
		}
	}
}

func drainSink(ctx context.Context, p *pipeline.Pipeline, pgDSN string) {
	if pgDSN == "" {
		for in := range p.Sink().Receive() {
			log.Printf("insight pipeline=%s instrument=%s feature=%s t=%d value=%.6f",
				in.PipelineID, in.InstrumentID, in.FeatureID, in.EventTimeMillis, in.Value)
		}
		return
	}

	client, err := conn.New(conn.Option{ConnString: pgDSN})
	if err != nil {
		log.Fatalf("postgres connect failed: %v", err)
	}
	defer client.Close()

	sink := persist.NewPostgresSink(client, 100)
	if err := sink.Migrate(); err != nil {
		log.Fatalf("postgres migrate failed: %v", err)
	}
	sink.Run(ctx, p.Sink().Receive())
}
