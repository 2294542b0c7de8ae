package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/courtflow/courtsched/core/detect"
	"github.com/courtflow/courtsched/pkg/export"
)

var (
	detectEvents    string
	detectLocations string
	detectFormat    string
	detectOutput    string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect scheduling conflicts in an event set",
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectEvents, "events", "events.json", "event set to analyze")
	detectCmd.Flags().StringVar(&detectLocations, "locations", "", "location catalog")
	detectCmd.Flags().StringVar(&detectFormat, "format", "json", "report format: json or csv")
	detectCmd.Flags().StringVarP(&detectOutput, "output", "o", "", "report file (stdout if empty)")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	svc.Start(ctx)

	events, err := loadEvents(detectEvents)
	if err != nil {
		return err
	}
	locations, err := loadLocations(detectLocations)
	if err != nil {
		return err
	}

	conflicts := svc.Detector.Detect(ctx, detect.Snapshot{Events: events, Locations: locations})

	out, err := openOutput(detectOutput)
	if err != nil {
		return err
	}
	defer closeOutput(out)
	switch detectFormat {
	case "json":
		return export.WriteConflictsJSON(out, conflicts)
	case "csv":
		return export.WriteConflictsCSV(out, conflicts)
	default:
		return fmt.Errorf("unknown format %q", detectFormat)
	}
}
