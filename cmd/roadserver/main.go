package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/driveforge/roadnet-simulator/internal/logging"
	"github.com/driveforge/roadnet-simulator/internal/observability"
	"github.com/driveforge/roadnet-simulator/internal/server"
	"github.com/driveforge/roadnet-simulator/road"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	_ = godotenv.Load(".env")

	networkPath := flag.String("network", "configs/network.json", "path to the road-network definition")
	mapName := flag.String("map-name", "", "map name; defaults to the name in the definition file")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewMapCollector(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	roadmap, summary, err := buildMap(*networkPath, *mapName, log, collector)
	if err != nil {
		// A structurally broken definition is fatal to world load.
		log.Error(ctx, "map construction failed",
			logging.String("network", *networkPath),
			logging.String("error", err.Error()),
		)
		os.Exit(1)
	}

	log.Info(ctx, "road network loaded",
		logging.String("map", roadmap.Name()),
		logging.Int("segments", summary.Loaded),
		logging.Int("rejected", summary.Rejected),
	)

	srv := server.New(roadmap, log, collector)
	log.Info(ctx, "serving map queries", logging.String("addr", *addr))
	if err := srv.ListenAndServe(ctx, *addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "server exited", logging.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildMap constructs the map from a definition file. Map identity is fixed
// at construction, so the definition's own name is resolved before the map
// is built; the -map-name flag overrides it.
func buildMap(path, nameOverride string, log logging.Logger, collector *observability.MapCollector) (*road.Map, *road.NetworkSummary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	name := nameOverride
	if name == "" {
		var header struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &header); err != nil {
			return nil, nil, err
		}
		name = header.Name
	}

	m := road.NewMap(name, road.WithLogger(log), road.WithMetricsRecorder(collector))
	summary, err := road.LoadNetworkDefinition(m, bytes.NewReader(raw))
	if err != nil {
		return nil, nil, err
	}
	return m, summary, nil
}
