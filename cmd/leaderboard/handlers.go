package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/simonjung1603/medium-leaderboard/internal/config"
	"github.com/simonjung1603/medium-leaderboard/internal/ingest"
	"github.com/simonjung1603/medium-leaderboard/internal/scheduler"
	"github.com/simonjung1603/medium-leaderboard/internal/store"
	"github.com/simonjung1603/medium-leaderboard/pkg/medium"
	"github.com/simonjung1603/medium-leaderboard/pkg/notify"
	"github.com/simonjung1603/medium-leaderboard/pkg/server"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildClients(cfg *config.Config) (*medium.FeedClient, *medium.Client) {
	timeout := cfg.Medium.ParseRequestTimeout()
	feed := medium.NewFeedClient(cfg.Medium.FeedURL, timeout)
	api := medium.NewClient(cfg.Medium.GraphQLEndpoint, timeout)
	return feed, api
}

func buildNotifier(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier

	if cfg.Notify.DiscordWebhookURL != "" {
		notifiers = append(notifiers, notify.NewDiscord(cfg.Notify.DiscordWebhookURL))
	}
	if cfg.Notify.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhook(cfg.Notify.WebhookURL))
	}

	return notify.NewManager(notifiers)
}

func serverInfo(cfg *config.Config) server.Info {
	return server.Info{
		FeedURL:           cfg.Medium.FeedURL,
		DiscoveryInterval: cfg.Schedule.ParseDiscoveryInterval().String(),
		ClapsInterval:     cfg.Schedule.ParseClapsInterval().String(),
	}
}

func runDiscover() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	feed, api := buildClients(cfg)
	discoverer := ingest.NewDiscoverer(feed, api, db, buildNotifier(cfg))

	fmt.Fprintln(os.Stderr, "discovering submissions...")
	return discoverer.Run(context.Background())
}

func runRefresh(force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	_, api := buildClients(cfg)

	minGap := cfg.Schedule.ParseClapsMinGap()
	if force {
		minGap = -1 // negative gap disables the debounce
	}
	refresher := ingest.NewClapRefresher(api, db, minGap)

	fmt.Fprintln(os.Stderr, "refreshing clap counts...")
	return refresher.Run(context.Background())
}

func runTop(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	subs, err := db.ListByClaps(context.Background())
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(subs)
	}

	if len(subs) == 0 {
		fmt.Println("no submissions found (try: leaderboard discover)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCLAPS\tTITLE\tAUTHOR\tCATEGORY\tWORDS")
	for i, sub := range subs {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%d\n",
			i+1, sub.ClapCount, sub.Title, sub.AuthorName, sub.Category, sub.WordCount)
	}
	return w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(db, serverInfo(cfg), cfg.Schedule.ParseClapsInterval(), port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	feed, api := buildClients(cfg)
	discoverer := ingest.NewDiscoverer(feed, api, db, buildNotifier(cfg))
	refresher := ingest.NewClapRefresher(api, db, cfg.Schedule.ParseClapsMinGap())
	details := ingest.NewDetailsRefresher()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(discoverer, details, refresher,
		cfg.Schedule.ParseDiscoveryInterval(),
		cfg.Schedule.ParseDetailsInterval(),
		cfg.Schedule.ParseClapsInterval(),
	)

	// Start scheduler in background.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	srv := server.New(db, serverInfo(cfg), cfg.Schedule.ParseClapsInterval(), port)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}
