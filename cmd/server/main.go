package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aurora-0025/onam-game/internal/events"
	"github.com/aurora-0025/onam-game/internal/game"
	"github.com/aurora-0025/onam-game/internal/game/arena"
	"github.com/aurora-0025/onam-game/internal/network"
	"github.com/aurora-0025/onam-game/internal/session"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg := configFromEnv()
	addr := envString("ONAM_ADDR", ":8080")

	var publisher arena.Publisher = events.Noop{}
	if url := os.Getenv("ONAM_NATS_URL"); url != "" {
		p, err := events.Connect(url, log)
		if err != nil {
			log.Error("nats connect failed, telemetry disabled", "url", url, "err", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	// The gateway needs a dispatcher before the server exists; the closure
	// resolves srv at call time, which is always after Run starts.
	var srv *network.Server
	gateway := session.NewGateway(cfg, publisher, func(fn func()) { srv.Dispatch(fn) }, log)
	srv = network.NewServer(gateway)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting tug-of-war server",
		"addr", addr,
		"maxTeamSize", cfg.MaxTeamSize,
		"winThreshold", cfg.WinThreshold,
		"countdownSeconds", cfg.CountdownSeconds,
	)
	if err := srv.Run(ctx, addr); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// configFromEnv overlays ONAM_* environment variables onto the defaults.
func configFromEnv() game.Config {
	cfg := game.DefaultConfig()
	cfg.MaxTeamSize = envInt("ONAM_MAX_TEAM_SIZE", cfg.MaxTeamSize)
	cfg.ClickPower = envInt("ONAM_CLICK_POWER", cfg.ClickPower)
	cfg.WinThreshold = envInt("ONAM_WIN_THRESHOLD", cfg.WinThreshold)
	cfg.CountdownSeconds = envInt("ONAM_COUNTDOWN_SECONDS", cfg.CountdownSeconds)
	if ttl := envInt("ONAM_FINISHED_TTL_SECONDS", 0); ttl > 0 {
		cfg.FinishedSessionTTL = time.Duration(ttl) * time.Second
	}
	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid env value", "key", key, "value", v)
		return fallback
	}
	return n
}
