package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/agent"
	"github.com/CareTrackHQ/caretrack_app/internal/clocksession"
	"github.com/CareTrackHQ/caretrack_app/internal/utils"
	"github.com/CareTrackHQ/caretrack_app/pkg/config"
)

func main() {
	// Parse command line flags
	apiURL := flag.String("api-url", "http://localhost:8080", "Backend base URL")
	token := flag.String("token", "", "Caregiver JWT bearer token")
	lat := flag.Float64("lat", 0, "Device latitude")
	lng := flag.Float64("lng", 0, "Device longitude")
	locationID := flag.String("location", "", "Work location ID to clock against (optional)")
	action := flag.String("action", "watch", "Action to perform: watch, clock-in, clock-out")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if *token == "" {
		fmt.Fprintln(os.Stderr, "Missing required -token flag")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	apiClient := agent.NewClient(*apiURL, *token, 15*time.Second, logger)
	gps := &agent.StaticPositionProvider{
		Position: clocksession.Position{Latitude: *lat, Longitude: *lng},
	}

	controller := clocksession.NewController(apiClient, gps, clocksession.Config{
		GPSPollInterval:     cfg.GPSPollInterval,
		ElapsedTickInterval: cfg.ElapsedTickInterval,
		GPSTimeout:          cfg.GPSTimeout,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := controller.Start(ctx); err != nil {
		logger.Error("Failed to start clock session", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer controller.Stop()

	if *locationID != "" {
		controller.SelectLocation(*locationID)
	}

	switch *action {
	case "clock-in":
		if err := controller.ClockIn(ctx, nil); err != nil {
			logger.Error("Clock-in failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		printSnapshot(controller.CurrentSnapshot())
	case "clock-out":
		if err := controller.ClockOut(ctx); err != nil {
			logger.Error("Clock-out failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		printSnapshot(controller.CurrentSnapshot())
	case "watch":
		watch(ctx, controller, logger)
	default:
		fmt.Fprintf(os.Stderr, "Unknown action %q\n", *action)
		os.Exit(1)
	}
}

// watch prints the session state every 30 seconds until interrupted.
func watch(ctx context.Context, controller *clocksession.Controller, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	printSnapshot(controller.CurrentSnapshot())
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			logger.Info("Shutting down", slog.String("signal", sig.String()))
			return
		case <-ticker.C:
			printSnapshot(controller.CurrentSnapshot())
		}
	}
}

func printSnapshot(snap clocksession.Snapshot) {
	fmt.Printf("state=%s gps=%s", snap.State, snap.GPSStatus)
	if snap.DistanceMeters != nil {
		fmt.Printf(" distance=%s", utils.FormatDistance(*snap.DistanceMeters))
	}
	if snap.ActiveEntry != nil {
		fmt.Printf(" elapsed=%s", utils.FormatDuration(snap.ElapsedMinutes))
	}
	if snap.Summary != nil {
		fmt.Printf(" period=%s..%s hours=%s", snap.Summary.PeriodStart, snap.Summary.PeriodEnd, snap.Summary.TotalHours)
	}
	if snap.LastError != "" {
		fmt.Printf(" last_error=%q", snap.LastError)
	}
	fmt.Println()
}
