package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/transitfeed/internal/common/config"
	"github.com/transitfeed/internal/common/db"
	"github.com/transitfeed/internal/common/discord"
	"github.com/transitfeed/internal/common/logger"
	"github.com/transitfeed/internal/common/maintenance"
	"github.com/transitfeed/internal/gtfs-static/importer"
	"github.com/transitfeed/pkg/gtfs"
	"github.com/transitfeed/pkg/gtfs/models"
)

func main() {
	// A missing .env is fine; anything else is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("Failed to load .env file: " + err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	feedPath := flag.String("feed", cfg.Feed.Path, "GTFS feed directory or zip archive")
	serviceID := flag.String("service", "", "service id to resolve active days for")
	refDate := flag.String("date", "", "reference date (YYYYMMDD) for -service, defaults to today")
	export := flag.Bool("export", cfg.Feed.Export, "export the loaded feed to PostgreSQL")
	keep := flag.Int("keep", cfg.Feed.KeepVersions, "inactive versions to keep after an export")
	flag.Parse()

	cfg.Feed.Path = *feedPath
	cfg.Feed.Export = *export
	cfg.Feed.KeepVersions = *keep

	loggerConfig := logger.DefaultLoggerConfig()
	loggerConfig.Level = logger.ParseLogLevel(cfg.Logging.Level)
	if cfg.Logging.FilePath != "" {
		loggerConfig.File = true
		loggerConfig.FilePath = cfg.Logging.FilePath
	}
	if cfg.Logging.DiscordURL != "" {
		loggerConfig.Alerter = discord.NewClient(cfg.Logging.DiscordURL, "gtfsfeed")
	}
	log := logger.NewFromConfig(loggerConfig)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	feed, err := gtfs.NewLoader(log).LoadPath(cfg.Feed.Path)
	if err != nil {
		log.Fatal("Failed to load GTFS feed", "path", cfg.Feed.Path, "error", err)
	}

	if *serviceID != "" {
		ref := time.Now()
		if *refDate != "" {
			ref, err = models.ParseDate(*refDate)
			if err != nil {
				log.Fatal("Invalid reference date", "error", err)
			}
		}
		printServiceDays(feed, *serviceID, ref)
	}

	if cfg.Feed.Export {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := exportFeed(ctx, cfg, feed, log); err != nil {
			log.Fatal("Export failed", "error", err)
		}
	}
}

func printServiceDays(feed *gtfs.Feed, serviceID string, ref time.Time) {
	days := feed.TripDays(serviceID, ref)
	dates := feed.ServiceDates(serviceID, ref)

	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprintf("+%d (%s)", d, dates[i].Format("Mon 2006-01-02"))
	}
	fmt.Printf("service %s from %s: %d day(s)\n", serviceID, models.FormatDate(ref), len(days))
	for _, p := range parts {
		fmt.Println("  " + p)
	}
}

func exportFeed(ctx context.Context, cfg *config.Config, feed *gtfs.Feed, log logger.Logger) error {
	database, err := db.New(ctx, cfg.Database.ConnectionString(), log)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	versionName := filepath.Base(cfg.Feed.Path)
	for _, info := range feed.FeedInfo {
		if info.Version != "" {
			versionName = info.Version
			break
		}
	}

	if _, err := importer.NewImporter(database).Import(ctx, feed, versionName, cfg.Feed.Path); err != nil {
		return err
	}

	_, err = maintenance.New(database, log).PruneVersions(ctx, cfg.Feed.KeepVersions)
	return err
}
