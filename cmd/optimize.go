package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/courtflow/courtsched/core/optimize"
	"github.com/courtflow/courtsched/pkg/export"
)

var (
	optEvents    string
	optSlots     string
	optLocations string
	optAlgorithm string
	optSeed      int64
	optFormat    string
	optOutput    string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Assign events to slots and score the schedule",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&optEvents, "events", "events.json", "event set to schedule")
	optimizeCmd.Flags().StringVar(&optSlots, "slots", "slots.json", "available slots")
	optimizeCmd.Flags().StringVar(&optLocations, "locations", "", "location catalog")
	optimizeCmd.Flags().StringVar(&optAlgorithm, "algorithm", "auto", "auto, greedy or genetic")
	optimizeCmd.Flags().Int64Var(&optSeed, "seed", 0, "random seed (0 picks one)")
	optimizeCmd.Flags().StringVar(&optFormat, "format", "json", "report format: json or csv")
	optimizeCmd.Flags().StringVarP(&optOutput, "output", "o", "", "report file (stdout if empty)")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	svc.Start(ctx)

	events, err := loadEvents(optEvents)
	if err != nil {
		return err
	}
	slots, err := loadSlots(optSlots)
	if err != nil {
		return err
	}
	locations, err := loadLocations(optLocations)
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if optSeed != 0 {
		rng = rand.New(rand.NewSource(optSeed))
	}
	p := optimize.Problem{Events: events, Slots: slots, Locations: locations}
	schedule := svc.Optimizer.Optimize(ctx, p, optimize.Algorithm(optAlgorithm), rng)

	out, err := openOutput(optOutput)
	if err != nil {
		return err
	}
	defer closeOutput(out)
	switch optFormat {
	case "json":
		return export.WriteScheduleJSON(out, schedule)
	case "csv":
		return export.WriteScheduleCSV(out, schedule)
	default:
		return fmt.Errorf("unknown format %q", optFormat)
	}
}
