package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/substationlabs/pdwatch/internal/alert"
	"github.com/substationlabs/pdwatch/internal/analysis"
	"github.com/substationlabs/pdwatch/internal/api"
	"github.com/substationlabs/pdwatch/internal/config"
	"github.com/substationlabs/pdwatch/internal/models"
	"github.com/substationlabs/pdwatch/internal/simulate"
	"github.com/substationlabs/pdwatch/internal/store"
)

// Fallback fleet for when the config file defines no projects. Enough
// to exercise every pattern and device kind out of the box.
var defaultProjects = []config.Project{
	{ID: "demo", Name: "Demo Substation", Region: "Central"},
}

var defaultDevices = []config.Device{
	{ID: "sw-01", ProjectID: "demo", Name: "Switchgear Bay 1", Kind: "switchgear", Location: "Room A", Pattern: "stable"},
	{ID: "tx-01", ProjectID: "demo", Name: "Transformer 1", Kind: "transformer", Location: "Yard", Pattern: "rising"},
	{ID: "cj-01", ProjectID: "demo", Name: "Cable Joint 7", Kind: "cable_joint", Location: "Trench 3", Pattern: "inflection"},
}

func main() {
	configPath := flag.String("config", "pdwatch.yaml", "path to YAML config file")
	dbPath := flag.String("db", "", "path to SQLite database (overrides config)")
	port := flag.String("port", "", "HTTP server port (overrides config)")
	once := flag.Bool("once", false, "refresh and analyze once, then exit")
	noSim := flag.Bool("no-sim", false, "disable the simulator (server only)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *port != "" {
		cfg.Port = *port
	}
	if len(cfg.Projects) == 0 {
		cfg.Projects = defaultProjects
		cfg.Devices = defaultDevices
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	if err := seedFleet(st, cfg); err != nil {
		log.Fatalf("seed fleet: %v", err)
	}
	log.Printf("fleet seeded: %d projects, %d devices", len(cfg.Projects), len(cfg.Devices))

	analysisCfg := analysisConfig(cfg.Analysis)
	gen := simulate.NewGenerator(cfg.Simulator.Seed)
	notifier := alert.NewNotifier(cfg.Alerting.WebhookURL)
	scheduler := simulate.NewScheduler(st, gen, notifier, analysisCfg, cfg.Simulator.RefreshInterval())
	server := api.NewServer(st, gen, cfg.Port, analysisCfg)

	if *once {
		log.Println("running single refresh")
		scheduler.RefreshOnce()
		log.Println("done")
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !*noSim {
		go scheduler.Run(ctx)
	} else {
		log.Println("simulator disabled (--no-sim)")
	}

	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func seedFleet(st *store.Store, cfg *config.Config) error {
	for _, p := range cfg.Projects {
		err := st.UpsertProject(models.Project{ProjectID: p.ID, Name: p.Name, Region: p.Region})
		if err != nil {
			return err
		}
	}
	for _, d := range cfg.Devices {
		err := st.UpsertDevice(models.Device{
			DeviceID:  d.ID,
			ProjectID: d.ProjectID,
			Name:      d.Name,
			Kind:      d.Kind,
			Location:  d.Location,
			Status:    "normal",
			Pattern:   d.Pattern,
			Active:    true,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func analysisConfig(a config.Analysis) analysis.Config {
	return analysis.Config{
		WindowSize:      a.WindowSize,
		StabilityBand:   a.StabilityBand,
		JumpThreshold:   a.JumpThreshold,
		BaselineDecay:   a.BaselineDecay,
		ForecastHorizon: a.ForecastHorizon,
		DampingFloor:    a.DampingFloor,
		DampingStep:     a.DampingStep,
	}
}
