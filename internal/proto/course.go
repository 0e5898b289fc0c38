// internal/proto/course.go
//
// The A1006 course transfer chain: courses, then course laps, then
// course tracks, then course points. Course tracks go through A1012 when
// the device reports it; otherwise the generic envelope runs on the
// course track pids with the track protocol's negotiated datatypes.
package proto

import (
	"context"

	"github.com/guiperry/garminlink/internal/schema"
)

// CourseLapTransfer is the A1007 Course Lap Transfer Protocol.
type CourseLapTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *CourseLapTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().CourseLap}
}

func (p *CourseLapTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferCourseLaps, p.Schemas, p.pids(), cb)
}

// CoursePointTransfer is the A1008 Course Point Transfer Protocol.
type CoursePointTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *CoursePointTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().CoursePoint}
}

func (p *CoursePointTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferCoursePoints, p.Schemas, p.pids(), cb)
}

// CourseTrackTransfer is the A1012 Course Track Transfer Protocol: a
// header-then-points multiset on the course track pids.
type CourseTrackTransfer struct {
	Transfer
	Schemas []*schema.Schema
}

func (p *CourseTrackTransfer) pids() []uint16 {
	pids := p.Link.Pids()
	return []uint16{pids.CourseTrkHdr, pids.CourseTrkData}
}

func (p *CourseTrackTransfer) Get(ctx context.Context, cb Progress) ([]Item, error) {
	return p.GetData(ctx, p.Cmds.TransferCourseTracks, p.Schemas, p.pids(), cb)
}

// CoursesResult is the full payload of one A1006 transfer chain.
type CoursesResult struct {
	Courses []Item
	Laps    []Item
	Tracks  []Item
	Points  []Item
}

// CourseTransfer is the A1006 Course Transfer Protocol.
type CourseTransfer struct {
	Transfer
	Schemas []*schema.Schema
	Laps    *CourseLapTransfer
	Points  *CoursePointTransfer
	// Tracks is nil when the device does not report A1012; the fallback
	// datatypes then come from the track log protocol.
	Tracks *CourseTrackTransfer
	// TrackFallbackSchemas are the track log protocol's datatypes, used
	// on the course track pids when Tracks is nil.
	TrackFallbackSchemas []*schema.Schema
}

func (p *CourseTransfer) pids() []uint16 {
	return []uint16{p.Link.Pids().Course}
}

func (p *CourseTransfer) Get(ctx context.Context, cb Progress) (CoursesResult, error) {
	var result CoursesResult
	courses, err := p.GetData(ctx, p.Cmds.TransferCourses, p.Schemas, p.pids(), cb)
	if err != nil {
		return result, err
	}
	result.Courses = courses
	if result.Laps, err = p.Laps.Get(ctx, cb); err != nil {
		return result, err
	}
	if p.Tracks != nil {
		result.Tracks, err = p.Tracks.Get(ctx, cb)
	} else {
		pids := p.Link.Pids()
		result.Tracks, err = p.GetData(ctx, p.Cmds.TransferCourseTracks,
			p.TrackFallbackSchemas, []uint16{pids.CourseTrkHdr, pids.CourseTrkData}, cb)
	}
	if err != nil {
		return result, err
	}
	if result.Points, err = p.Points.Get(ctx, cb); err != nil {
		return result, err
	}
	return result, nil
}
