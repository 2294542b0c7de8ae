package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/courtflow/courtsched/core/model"
)

func loadJSON(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := json.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadEvents(path string) ([]model.Event, error) {
	var events []model.Event
	if err := loadJSON(path, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func loadSlots(path string) ([]model.Slot, error) {
	var slots []model.Slot
	if err := loadJSON(path, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func loadLocations(path string) (map[string]model.Location, error) {
	if path == "" {
		return nil, nil
	}
	var locs []model.Location
	if err := loadJSON(path, &locs); err != nil {
		return nil, err
	}
	byID := make(map[string]model.Location, len(locs))
	for _, l := range locs {
		byID[l.ID] = l
	}
	return byID, nil
}

// openOutput returns the report destination: a file when path is set,
// stdout otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

func closeOutput(w io.WriteCloser) {
	if w != os.Stdout {
		_ = w.Close()
	}
}
