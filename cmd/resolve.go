package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/courtflow/courtsched/core/detect"
	"github.com/courtflow/courtsched/core/model"
	"github.com/courtflow/courtsched/core/resolve"
)

var (
	resEvents    string
	resLocations string
	resOutput    string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Detect conflicts and run them through the resolution rules",
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resEvents, "events", "events.json", "event set to check")
	resolveCmd.Flags().StringVar(&resLocations, "locations", "", "location catalog")
	resolveCmd.Flags().StringVarP(&resOutput, "output", "o", "", "audit report file (stdout if empty)")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	svc.Start(ctx)

	events, err := loadEvents(resEvents)
	if err != nil {
		return err
	}
	locations, err := loadLocations(resLocations)
	if err != nil {
		return err
	}

	conflicts := svc.Detector.Detect(ctx, detect.Snapshot{Events: events, Locations: locations})

	byID := make(map[string]model.Event, len(events))
	assignments := make(map[string]string, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
		for _, req := range ev.Resources {
			if req.Kind == model.ResourceCourtroom && req.ResourceID != "" {
				assignments[ev.ID] = req.ResourceID
				break
			}
		}
	}
	st := &resolve.State{
		Events:       byID,
		Assignments:  assignments,
		BlockedSlots: map[string]bool{},
		Now:          time.Now(),
	}

	records, err := svc.Resolver.ResolveAll(ctx, conflicts, st)
	if err != nil {
		return err
	}

	out, err := openOutput(resOutput)
	if err != nil {
		return err
	}
	defer closeOutput(out)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
