package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"weekplan/internal/config"
	"weekplan/internal/export"
	"weekplan/internal/ics"
	appLog "weekplan/internal/log"
	"weekplan/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	out        string
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("weekplan starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
		"once", flags.once,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if err := runOnce(ctx, conf, flags.out); err != nil {
			appLog.Error("plan run failed", err)
			os.Exit(1)
		}
		return
	}

	// Periodic ICS refresh keeps the disk cache warm so plan requests stay
	// fast even when a feed host is slow.
	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() { refreshFeeds(ctx, conf) }); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	if err := web.StartServer(ctx, conf); err != nil {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}
	appLog.Info("weekplan exiting")
}

// runOnce builds one plan, prints it as JSON to stdout, and optionally writes
// the ICS rendition to the -out path.
func runOnce(ctx context.Context, conf *config.Config, outPath string) error {
	fetcher := ics.NewFetcher(conf.CacheDir)
	resp, err := web.BuildPlan(ctx, conf, fetcher)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}

	if outPath != "" {
		loc, lerr := time.LoadLocation(conf.Timezone)
		if lerr != nil {
			loc = time.UTC
		}
		body, cerr := export.Calendar(resp.Events, export.Options{
			WeekAnchor:   resp.GeneratedAt,
			Location:     loc,
			CalendarName: "weekplan",
		})
		if cerr != nil {
			return cerr
		}
		if werr := os.WriteFile(outPath, []byte(body), 0o644); werr != nil {
			return werr
		}
		appLog.Info("plan calendar written", "path", outPath, "events", len(resp.Events))
	}
	return nil
}

// refreshFeeds revalidates every configured feed against its cached copy.
func refreshFeeds(ctx context.Context, conf *config.Config) {
	sources := make([]ics.Source, 0, len(conf.ICS))
	for _, src := range conf.ICS {
		if src.URL == "" {
			continue
		}
		id := src.ID
		if id == "" {
			id = src.Name
		}
		if id == "" {
			id = src.URL
		}
		sources = append(sources, ics.Source{ID: id, URL: src.URL})
	}
	if len(sources) == 0 {
		return
	}

	fetcher := ics.NewFetcher(conf.CacheDir)
	results, errs := fetcher.FetchAll(ctx, sources)
	appLog.Info("feed refresh completed", "fetched", len(results), "failed", len(errs))
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Build one plan, print it as JSON, and exit")
	flag.StringVar(&cfg.out, "out", "", "With -once, also write the plan as ICS to this path")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
