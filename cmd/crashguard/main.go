package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ridepulse-app/crashguard/internal/api"
	"github.com/ridepulse-app/crashguard/internal/classify"
	"github.com/ridepulse-app/crashguard/internal/config"
	"github.com/ridepulse-app/crashguard/internal/escalate"
	"github.com/ridepulse-app/crashguard/internal/journal"
	"github.com/ridepulse-app/crashguard/internal/motion"
	"github.com/ridepulse-app/crashguard/internal/sensor"
	"github.com/ridepulse-app/crashguard/internal/status"
	"github.com/ridepulse-app/crashguard/internal/timeutil"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	sourceKind = flag.String("source", "udp", "Sample source: udp, serial, or replay")
	udpAddr    = flag.String("udp-addr", ":9911", "UDP listen address for the udp source")
	serialPort = flag.String("serial-port", "/dev/ttyUSB0", "Serial port for the serial source")
	baudRate   = flag.Int("baud", 115200, "Baud rate for the serial source")
	fixtures   = flag.String("fixtures", "fixtures.txt", "Fixture file for the replay source")
	dbFile     = flag.String("db", "crashguard.db", "Session journal database path (empty disables journaling)")
	configFile = flag.String("config", "", "Tuning config JSON path (empty uses built-in defaults)")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	tuning := config.EmptyTuningConfig()
	if *configFile != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	clock := timeutil.RealClock{}

	var recorder escalate.Recorder
	var jnl *journal.Journal
	if *dbFile != "" {
		var err error
		jnl, err = journal.Open(*dbFile)
		if err != nil {
			log.Fatalf("failed to open session journal: %v", err)
		}
		defer jnl.Close()
		recorder = jnl
	}

	buffer := motion.NewBuffer(tuning.GetWindowDuration(), tuning.GetSkewTolerance())
	classifier := classify.NewHeuristicClassifier(classify.HeuristicConfig{
		MinFillRatio:       tuning.GetMinFillRatio(),
		ProbabilityFloor:   tuning.GetProbabilityFloor(),
		ImpactScaleG:       tuning.GetImpactScaleG(),
		DecelScaleMps2:     tuning.GetDecelScaleMps2(),
		RolloverScaleRadps: tuning.GetRolloverScaleRadps(),
	})

	opts := []escalate.Option{}
	if recorder != nil {
		opts = append(opts, escalate.WithRecorder(recorder))
	}
	coordinator := escalate.NewCoordinator(escalate.ConfigFromTuning(tuning), clock, buffer, classifier, opts...)
	aggregator := status.NewAggregator(coordinator)

	source, err := buildSource(coordinator.SubmitSample)
	if err != nil {
		log.Fatalf("failed to create sample source: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// sample acquisition routine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := source.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("sample source terminated: %v", err)
		}
		log.Print("sample source routine terminated")
	}()

	// evaluation tick routine: keeps the countdown deadline honoured even
	// when the sample stream goes quiet after a crash
	wg.Add(1)
	go func() {
		defer wg.Done()
		coordinator.Run(ctx)
		log.Print("evaluation routine terminated")
	}()

	// log escalation events so a shell session shows the engine's decisions
	wg.Add(1)
	go func() {
		defer wg.Done()
		id, events := coordinator.Subscribe()
		defer coordinator.Unsubscribe(id)
		for {
			select {
			case e := <-events:
				log.Printf("escalation event: type=%s session=%s", e.Type, e.SessionID)
			case <-ctx.Done():
				return
			}
		}
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := api.NewServer(coordinator, aggregator, jnl, clock).ServeMux()

		server := &http.Server{
			Addr:    *listen,
			Handler: mux,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	log.Printf("crashguard listening on %s (source=%s)", *listen, *sourceKind)
	wg.Wait()
}

func buildSource(handler sensor.Handler) (sensor.Source, error) {
	switch *sourceKind {
	case "udp":
		return sensor.NewUDPSource(*udpAddr, handler), nil
	case "serial":
		return sensor.NewSerialSource(*serialPort, *baudRate, handler), nil
	case "replay":
		return sensor.NewReplaySource(*fixtures, true, handler), nil
	default:
		return nil, fmt.Errorf("unknown source %q (want udp, serial, or replay)", *sourceKind)
	}
}
