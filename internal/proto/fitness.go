// internal/proto/fitness.go
//
// The chained fitness transfers: runs (A1000) pull their laps and track
// logs after the primary list; workouts (A1002) pull their occurrences.
package proto

import (
	"context"

	"github.com/guiperry/garminlink/internal/schema"
)

// RunsResult is the full payload of one A1000 transfer: the runs plus the
// dependent lap and track transfers, in the order the device emitted
// them.
type RunsResult struct {
	Runs   []Item
	Laps   []Item
	Tracks []Item
}

// RunTransfer is the A1000 Run Transfer Protocol. After the run list,
// laps and then tracks are transferred with the bound dependent
// protocols.
type RunTransfer struct {
	Transfer
	Schemas []*schema.Schema
	Laps    *LapTransfer
	Tracks  *TrackTransfer
}

func (p *RunTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().Run}
}

func (p *RunTransfer) Get(ctx context.Context, cb Progress) (RunsResult, error) {
	var result RunsResult
	runs, err := p.GetData(ctx, p.Cmds.TransferRuns, p.Schemas, p.pids(), cb)
	if err != nil {
		return result, err
	}
	result.Runs = runs
	if result.Laps, err = p.Laps.Get(ctx, cb); err != nil {
		return result, err
	}
	if result.Tracks, err = p.Tracks.Get(ctx, cb); err != nil {
		return result, err
	}
	return result, nil
}

// WorkoutOccurrenceTransfer is the A1003 Workout Occurrence Transfer
// Protocol.
type WorkoutOccurrenceTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *WorkoutOccurrenceTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().WorkoutOccurrence}
}

func (p *WorkoutOccurrenceTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferWorkoutOccurrences, p.Schemas, p.pids(), cb)
}

// WorkoutsResult is the payload of one A1002 transfer: the workouts plus
// their scheduled occurrences.
type WorkoutsResult struct {
	Workouts    []Item
	Occurrences []Item
}

// WorkoutTransfer is the A1002 Workout Transfer Protocol. Occurrences
// follow the workout list when the device reports A1003.
type WorkoutTransfer struct {
	Transfer
	Schemas []*schema.Schema
	// Occurrences is nil when the device does not report A1003.
	Occurrences *WorkoutOccurrenceTransfer
}

func (p *WorkoutTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().Workout}
}

// Put uploads pre-built workout records.
func (p *WorkoutTransfer) Put(ctx context.Context, items []Item, cb Progress) error {
	return p.PutData(ctx, p.Cmds.TransferWorkouts, items, p.pids(), cb)
}

func (p *WorkoutTransfer) Get(ctx context.Context, cb Progress) (WorkoutsResult, error) {
	var result WorkoutsResult
	workouts, err := p.GetData(ctx, p.Cmds.TransferWorkouts, p.Schemas, p.pids(), cb)
	if err != nil {
		return result, err
	}
	result.Workouts = workouts
	if p.Occurrences != nil {
		if result.Occurrences, err = p.Occurrences.Get(ctx, cb); err != nil {
			return result, err
		}
	}
	return result, nil
}
