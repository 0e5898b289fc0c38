// internal/proto/single.go
//
// Single-datum protocols: one command, one packet, no records envelope.
// Covers A600 (date/time), A700 (position), A1004 (fitness user
// profile), A1005 (workout limits), and A1009 (course limits).
package proto

import (
	"context"

	"github.com/guiperry/garminlink/internal/schema"
)

// TimeTransfer is the A600 Date and Time Initialization Protocol.
type TimeTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *TimeTransfer) Get(ctx context.Context) (Item, error) {
	return p.GetSingle(ctx, p.Cmds.TransferTime, p.Link.Pids().DateTimeData, firstSchema(p.Schemas))
}

// Put sets the device clock from a packed D0 record.
func (p *TimeTransfer) Put(ctx context.Context, data []byte) error {
	return p.PutSingle(ctx, p.Link.Pids().DateTimeData, data)
}

// PositionTransfer is the A700 Position Initialization Protocol.
type PositionTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *PositionTransfer) Get(ctx context.Context) (Item, error) {
	return p.GetSingle(ctx, p.Cmds.TransferPosn, p.Link.Pids().PositionData, firstSchema(p.Schemas))
}

// Put initializes the device position from a packed D0 record, for
// receivers moved a long way while off.
func (p *PositionTransfer) Put(ctx context.Context, data []byte) error {
	return p.PutSingle(ctx, p.Link.Pids().PositionData, data)
}

// FitnessProfileTransfer is the A1004 Fitness User Profile Transfer
// Protocol.
type FitnessProfileTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *FitnessProfileTransfer) Get(ctx context.Context) (Item, error) {
	return p.GetSingle(ctx, p.Cmds.TransferFitnessUserProfile, p.Link.Pids().FitnessUserProfile, firstSchema(p.Schemas))
}

func (p *FitnessProfileTransfer) Put(ctx context.Context, data []byte) error {
	return p.PutSingle(ctx, p.Link.Pids().FitnessUserProfile, data)
}

// WorkoutLimitsTransfer is the A1005 Workout Limits Transfer Protocol.
// Read-only: the limits describe device capacity.
type WorkoutLimitsTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *WorkoutLimitsTransfer) Get(ctx context.Context) (Item, error) {
	return p.GetSingle(ctx, p.Cmds.TransferWorkoutLimits, p.Link.Pids().WorkoutLimits, firstSchema(p.Schemas))
}

// CourseLimitsTransfer is the A1009 Course Limits Transfer Protocol.
// Read-only.
type CourseLimitsTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *CourseLimitsTransfer) Get(ctx context.Context) (Item, error) {
	return p.GetSingle(ctx, p.Cmds.TransferCourseLimits, p.Link.Pids().CourseLimits, firstSchema(p.Schemas))
}
