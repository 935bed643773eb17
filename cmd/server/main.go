package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gearmarket/internal/market"
	"gearmarket/internal/persistence/snapshot"
	"gearmarket/internal/persistence/store"
	"gearmarket/internal/tuning"
	"gearmarket/internal/transport/ws"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "http listen address")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		tuningPath   = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		saveSlot     = flag.String("slot", "default", "save slot name")
		gameHourSecs = flag.Float64("game_hour_secs", 60, "real seconds per in-game hour (dev harness clock)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[market] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	st, err := store.Open(filepath.Join(*dataDir, "market.db"))
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer st.Close()

	// Dev harness: in-memory clock, bank, players, auctioneers. A host game
	// embedding the market supplies its own implementations of these.
	world := newDevWorld(*gameHourSecs)

	m := market.New(market.Config{
		Pricing: market.PricingPolicy{
			SalesCutRate:     tune.SalesCutRate,
			DeliveryCostMul:  tune.DeliveryCostMul,
			DurationWeeksMul: tune.DurationWeeksMul,
		},
		MaxListings:      tune.MaxListingsPerSeller,
		ListingWeekHours: tune.ListingWeekHours,
		SaveSlot:         *saveSlot,
	}, world, world, world, world, world, logger)

	if blob, ok, err := st.Get(*saveSlot); err != nil {
		logger.Fatalf("load save %q: %v", *saveSlot, err)
	} else if ok {
		snap, err := snapshot.Decode(blob)
		if err != nil {
			logger.Fatalf("decode save %q: %v", *saveSlot, err)
		}
		m.ImportLedger(snap, world)
		logger.Printf("restored ledger: %d rows from slot %q", len(snap.Rows), *saveSlot)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Off-loop save writer: the loop exports structs, this goroutine encodes
	// and writes them.
	saveCh := make(chan snapshot.LedgerV1, 4)
	m.SetSaveSink(saveCh)
	go func() {
		for snap := range saveCh {
			blob, err := snapshot.Encode(snap)
			if err != nil {
				logger.Printf("save: encode: %v", err)
				continue
			}
			if err := st.Put(snap.Header.Slot, blob); err != nil {
				logger.Printf("save: put slot %q: %v", snap.Header.Slot, err)
			}
		}
	}()

	go func() {
		err := m.Run(ctx,
			time.Duration(tune.SweepEverySeconds)*time.Second,
			time.Duration(tune.SaveEverySeconds)*time.Second)
		if err != nil && ctx.Err() == nil {
			logger.Fatalf("market loop: %v", err)
		}
	}()

	wsrv := ws.NewServer(m, tune.ClientQueueMax, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsrv.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && !strings.Contains(err.Error(), "closed") {
			logger.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Printf("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	// Final save before the loop stops.
	snap := m.Export()
	if blob, err := snapshot.Encode(snap); err != nil {
		logger.Printf("final save: encode: %v", err)
	} else if err := st.Put(snap.Header.Slot, blob); err != nil {
		logger.Printf("final save: put: %v", err)
	} else {
		logger.Printf("saved %d rows to slot %q", len(snap.Rows), snap.Header.Slot)
	}
	m.Stop()
}
