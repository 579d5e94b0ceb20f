// Command barpath runs the bar path tracking service: it accepts detector
// frames over HTTP, tracks the bar, scores completed repetitions, and
// serves session history and reports from a SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/liftlab-data/barpath.report/internal/api"
	"github.com/liftlab-data/barpath.report/internal/config"
	"github.com/liftlab-data/barpath.report/internal/metrics"
	"github.com/liftlab-data/barpath.report/internal/motion"
	"github.com/liftlab-data/barpath.report/internal/session"
	storage "github.com/liftlab-data/barpath.report/internal/storage/sqlite"
	"github.com/liftlab-data/barpath.report/internal/units"
	"github.com/liftlab-data/barpath.report/internal/version"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbFile        = flag.String("db", "barpath.db", "SQLite database file")
	tuningPath    = flag.String("config", "", "Tuning config file (defaults to config/tuning.defaults.json)")
	displayUnits  = flag.String("units", units.Meters, "Display units for distances (m, cm, in)")
	debugRoutes   = flag.Bool("debug", false, "Attach SQL browser and backup routes under /debug (no auth)")
	verbose       = flag.Bool("verbose", false, "Enable diagnostic logging")
	trace         = flag.Bool("trace", false, "Enable per-frame trace logging (implies -verbose)")
	retentionDays = flag.Int("retention", 0, "Delete sessions older than this many days at 4am (0 disables)")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("barpath %s\n", version.String())
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if !units.IsValid(*displayUnits) {
		log.Fatalf("invalid units %q, valid values: %s", *displayUnits, units.GetValidUnitsString())
	}

	var diag, traceW io.Writer
	if *verbose || *trace {
		diag = os.Stderr
	}
	if *trace {
		traceW = os.Stderr
	}
	motion.SetLogWriters(motion.LogWriters{Ops: os.Stderr, Diag: diag, Trace: traceW})

	var tuning *config.TuningConfig
	if *tuningPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*tuningPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	} else {
		tuning = config.MustLoadDefaultConfig()
	}
	if err := tuning.Validate(); err != nil {
		log.Fatalf("invalid tuning config: %v", err)
	}

	db, err := storage.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.MigrateUp(); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	store := storage.NewSessionStore(db)
	m := metrics.New()
	manager := session.NewManager(session.Config{
		Tuning:     tuning,
		Store:      store,
		RenderSink: m,
		RecordSink: m,
	})

	mux := api.NewServer(manager, store, m, *displayUnits).ServeMux()
	if *debugRoutes {
		if err := db.AttachAdminRoutes(mux); err != nil {
			log.Fatalf("failed to attach debug routes: %v", err)
		}
		log.Printf("debug routes attached under /debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var scheduler *cron.Cron
	if *retentionDays > 0 {
		scheduler = cron.New()
		_, err := scheduler.AddFunc("0 4 * * *", func() {
			cutoff := time.Now().AddDate(0, 0, -*retentionDays)
			n, err := store.DeleteSessionsBefore(context.Background(), cutoff)
			if err != nil {
				log.Printf("retention prune failed: %v", err)
				return
			}
			log.Printf("retention prune removed %d sessions", n)
		})
		if err != nil {
			log.Fatalf("failed to schedule retention job: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("barpath %s listening on %s (db=%s units=%s)",
				version.Version, *listen, *dbFile, *displayUnits)
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
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}
	}()

	wg.Wait()
	log.Printf("graceful shutdown complete")
}
