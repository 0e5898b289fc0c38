// pkg/garmin/garmin.go
//
// The session façade: open a transport, identify the device, negotiate
// its capability set, and expose the bound transfer protocols as typed
// methods. A Device owns its physical handle exclusively; nothing here
// is reentrant.
package garmin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guiperry/garminlink/internal/capability"
	"github.com/guiperry/garminlink/internal/datatype"
	"github.com/guiperry/garminlink/internal/diag"
	"github.com/guiperry/garminlink/internal/hostcfg"
	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/logging"
	"github.com/guiperry/garminlink/internal/proto"
	"github.com/guiperry/garminlink/internal/registry"
	"github.com/guiperry/garminlink/internal/wire"
)

// Device is one open session with a Garmin unit.
type Device struct {
	phys   wire.Physical
	serial *wire.Serial // non-nil only on the serial transport
	link   *link.Link
	prod   capability.ProductData
	caps   capability.Set
	reg    *registry.Registry
	mapt   *proto.MapTransfer // memoizes the capacity record
}

// Open opens the transport named by cfg and bootstraps a session.
func Open(cfg *hostcfg.SessionConfig) (*Device, error) {
	diag.LogSnapshot()
	switch cfg.Transport {
	case "serial":
		phys, err := wire.OpenSerial(wire.SerialConfig{
			Port:        cfg.Port,
			BaudRate:    cfg.BaudRate,
			ReadTimeout: cfg.ReadTimeout,
			MaxRetries:  cfg.MaxRetries,
		})
		if err != nil {
			return nil, err
		}
		d, err := New(phys)
		if err != nil {
			phys.Close()
			return nil, err
		}
		d.serial = phys
		return d, nil
	case "usb":
		phys, err := wire.OpenUSB(wire.USBConfig{
			MaxRetries: cfg.MaxRetries,
			Timeout:    cfg.ReadTimeout,
		})
		if err != nil {
			return nil, err
		}
		d, err := New(phys)
		if err != nil {
			phys.Close()
			return nil, err
		}
		return d, nil
	default:
		return nil, wire.NewProtocolError("open",
			fmt.Errorf("unknown transport %q, want serial or usb", cfg.Transport))
	}
}

// New bootstraps a session over an already-open transport: product data
// request, capability acquisition (A001 or the fallback table), registry
// build.
func New(phys wire.Physical) (*Device, error) {
	ctx := context.Background()
	d := &Device{phys: phys, link: link.New(phys, link.L001)}

	if err := d.link.SendPacket(ctx, d.link.Pids().ProductRqst, nil, true); err != nil {
		return nil, err
	}
	packet, err := d.link.ExpectPacket(ctx, d.link.Pids().ProductData, true)
	if err != nil {
		return nil, err
	}
	d.prod, err = capability.DecodeProductData(packet.Data)
	if err != nil {
		return nil, wire.NewProtocolError("product data", err)
	}
	logging.Infof("product %d, software %.2f, %q",
		d.prod.ProductID, d.prod.SoftwareVersion, d.prod.ProductDescription)

	// A001 follows unprompted on devices that support it; devices that
	// don't simply never send it and the read times out.
	packet, err = d.link.ExpectPacket(ctx, d.link.Pids().ProtocolArray, true)
	switch {
	case err == nil:
		d.caps, err = capability.DecodeProtocolArray(packet.Data)
		if err != nil {
			return nil, wire.NewProtocolError("protocol array", err)
		}
		logging.Infof("device reported %d protocols", len(d.caps))
	case isLinkError(err):
		d.caps, err = capability.Lookup(d.prod.ProductID, d.prod.SoftwareVersion)
		if err != nil {
			return nil, wire.NewProtocolError("capability lookup", err)
		}
		logging.Infof("no protocol array; fallback table supplied %d protocols", len(d.caps))
	default:
		return nil, err
	}

	d.reg = registry.Build(d.caps)
	d.link = link.New(phys, d.reg.Pids())
	return d, nil
}

func isLinkError(err error) bool {
	var le *wire.LinkError
	return errors.As(err, &le)
}

// ProductData returns the identity acquired at session start.
func (d *Device) ProductData() capability.ProductData { return d.prod }

// Capabilities returns the negotiated capability set.
func (d *Device) Capabilities() capability.Set { return d.caps }

// Registry returns the bound role table.
func (d *Device) Registry() *registry.Registry { return d.reg }

// Close releases the transport. Further calls fail fast.
func (d *Device) Close() error { return d.phys.Close() }

func (d *Device) transfer() proto.Transfer {
	return proto.Transfer{Link: d.link, Cmds: d.reg.Commands()}
}

// Waypoints downloads the waypoint list.
func (d *Device) Waypoints(ctx context.Context, cb proto.Progress) ([]proto.Item, error) {
	b, err := d.reg.Get(registry.RoleWaypoint)
	if err != nil {
		return nil, err
	}
	p := &proto.WaypointTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Get(ctx, cb)
}

// PutWaypoints uploads pre-built waypoint records.
func (d *Device) PutWaypoints(ctx context.Context, items []proto.Item, cb proto.Progress) error {
	b, err := d.reg.Get(registry.RoleWaypoint)
	if err != nil {
		return err
	}
	p := &proto.WaypointTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Put(ctx, items, cb)
}

// WaypointCategories downloads the waypoint category list.
func (d *Device) WaypointCategories(ctx context.Context, cb proto.Progress) ([]proto.Item, error) {
	b, err := d.reg.Get(registry.RoleWaypointCategory)
	if err != nil {
		return nil, err
	}
	p := &proto.WaypointCategoryTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Get(ctx, cb)
}

// Routes downloads every route with its headers, waypoints, and (A201)
// links in device order.
func (d *Device) Routes(ctx context.Context, cb proto.Progress) ([]proto.Item, error) {
	b, err := d.reg.Get(registry.RoleRoute)
	if err != nil {
		return nil, err
	}
	p := &proto.RouteTransfer{Transfer: d.transfer(), Variant: b.Protocol.Tag, Schemas: b.Schemas}
	return p.Get(ctx, cb)
}

// PutRoutes uploads pre-built route records in device order.
func (d *Device) PutRoutes(ctx context.Context, items []proto.Item, cb proto.Progress) error {
	b, err := d.reg.Get(registry.RoleRoute)
	if err != nil {
		return err
	}
	p := &proto.RouteTransfer{Transfer: d.transfer(), Variant: b.Protocol.Tag, Schemas: b.Schemas}
	return p.Put(ctx, items, cb)
}

// Tracks downloads the track log.
func (d *Device) Tracks(ctx context.Context, cb proto.Progress) ([]proto.Item, error) {
	b, err := d.reg.Get(registry.RoleTrack)
	if err != nil {
		return nil, err
	}
	p := &proto.TrackTransfer{Transfer: d.transfer(), Variant: b.Protocol.Tag, Schemas: b.Schemas}
	return p.Get(ctx, cb)
}

// PutTracks uploads a track log.
func (d *Device) PutTracks(ctx context.Context, items []proto.Item, cb proto.Progress) error {
	b, err := d.reg.Get(registry.RoleTrack)
	if err != nil {
		return err
	}
	p := &proto.TrackTransfer{Transfer: d.transfer(), Variant: b.Protocol.Tag, Schemas: b.Schemas}
	return p.Put(ctx, items, cb)
}

// ProximityWaypoints downloads the proximity waypoint list.
func (d *Device) ProximityWaypoints(ctx context.Context, cb proto.Progress) ([]proto.Item, error) {
	b, err := d.reg.Get(registry.RoleProximity)
	if err != nil {
		return nil, err
	}
	p := &proto.ProximityTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Get(ctx, cb)
}

// PutProximityWaypoints uploads proximity waypoints.
func (d *Device) PutProximityWaypoints(ctx context.Context, items []proto.Item, cb proto.Progress) error {
	b, err := d.reg.Get(registry.RoleProximity)
	if err != nil {
		return err
	}
	p := &proto.ProximityTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Put(ctx, items, cb)
}

// Almanac downloads the satellite almanac.
func (d *Device) Almanac(ctx context.Context, cb proto.Progress) ([]proto.Item, error) {
	b, err := d.reg.Get(registry.RoleAlmanac)
	if err != nil {
		return nil, err
	}
	p := &proto.AlmanacTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Get(ctx, cb)
}

// Flightbook downloads the logged flights of an aviation unit.
func (d *Device) Flightbook(ctx context.Context, cb proto.Progress) ([]proto.Item, error) {
	b, err := d.reg.Get(registry.RoleFlightbook)
	if err != nil {
		return nil, err
	}
	p := &proto.FlightbookTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Get(ctx, cb)
}

// Laps downloads the fitness laps.
func (d *Device) Laps(ctx context.Context, cb proto.Progress) ([]proto.Item, error) {
	b, err := d.reg.Get(registry.RoleLap)
	if err != nil {
		return nil, err
	}
	p := &proto.LapTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Get(ctx, cb)
}

// Runs downloads the fitness runs with their dependent lap and track
// transfers.
func (d *Device) Runs(ctx context.Context, cb proto.Progress) (proto.RunsResult, error) {
	b, err := d.reg.Get(registry.RoleRun)
	if err != nil {
		return proto.RunsResult{}, err
	}
	laps, err := d.reg.Get(registry.RoleLap)
	if err != nil {
		return proto.RunsResult{}, err
	}
	tracks, err := d.reg.Get(registry.RoleTrack)
	if err != nil {
		return proto.RunsResult{}, err
	}
	p := &proto.RunTransfer{
		Transfer: d.transfer(),
		Schemas:  b.Schemas,
		Laps:     &proto.LapTransfer{Transfer: d.transfer(), Schemas: laps.Schemas},
		Tracks:   &proto.TrackTransfer{Transfer: d.transfer(), Variant: tracks.Protocol.Tag, Schemas: tracks.Schemas},
	}
	return p.Get(ctx, cb)
}

// Workouts downloads workouts and, when the device reports A1003, their
// scheduled occurrences.
func (d *Device) Workouts(ctx context.Context, cb proto.Progress) (proto.WorkoutsResult, error) {
	b, err := d.reg.Get(registry.RoleWorkout)
	if err != nil {
		return proto.WorkoutsResult{}, err
	}
	p := &proto.WorkoutTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	if occ, err := d.reg.Get(registry.RoleWorkoutOccurrence); err == nil {
		p.Occurrences = &proto.WorkoutOccurrenceTransfer{Transfer: d.transfer(), Schemas: occ.Schemas}
	}
	return p.Get(ctx, cb)
}

// Courses downloads courses with their laps, tracks, and points.
func (d *Device) Courses(ctx context.Context, cb proto.Progress) (proto.CoursesResult, error) {
	b, err := d.reg.Get(registry.RoleCourse)
	if err != nil {
		return proto.CoursesResult{}, err
	}
	laps, err := d.reg.Get(registry.RoleCourseLap)
	if err != nil {
		return proto.CoursesResult{}, err
	}
	points, err := d.reg.Get(registry.RoleCoursePoint)
	if err != nil {
		return proto.CoursesResult{}, err
	}
	p := &proto.CourseTransfer{
		Transfer: d.transfer(),
		Schemas:  b.Schemas,
		Laps:     &proto.CourseLapTransfer{Transfer: d.transfer(), Schemas: laps.Schemas},
		Points:   &proto.CoursePointTransfer{Transfer: d.transfer(), Schemas: points.Schemas},
	}
	if tracks, err := d.reg.Get(registry.RoleCourseTrack); err == nil {
		p.Tracks = &proto.CourseTrackTransfer{Transfer: d.transfer(), Schemas: tracks.Schemas}
	} else if fallback, err := d.reg.Get(registry.RoleTrack); err == nil {
		p.TrackFallbackSchemas = fallback.Schemas
	}
	return p.Get(ctx, cb)
}

// Time reads the device clock.
func (d *Device) Time(ctx context.Context) (time.Time, error) {
	b, err := d.reg.Get(registry.RoleDateTime)
	if err != nil {
		return time.Time{}, err
	}
	p := &proto.TimeTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	item, err := p.Get(ctx)
	if err != nil {
		return time.Time{}, err
	}
	dt, err := datatype.DecodeD600(item.Data)
	if err != nil {
		return time.Time{}, wire.NewProtocolError("decode time", err)
	}
	return dt.Time(), nil
}

// SetTime sets the device clock.
func (d *Device) SetTime(ctx context.Context, t time.Time) error {
	b, err := d.reg.Get(registry.RoleDateTime)
	if err != nil {
		return err
	}
	p := &proto.TimeTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	data, err := datatype.NewD600(t).Pack()
	if err != nil {
		return wire.NewProtocolError("encode time", err)
	}
	return p.Put(ctx, data)
}

// Position reads the current position in degrees.
func (d *Device) Position(ctx context.Context) (lat, lon float64, err error) {
	b, err := d.reg.Get(registry.RolePosition)
	if err != nil {
		return 0, 0, err
	}
	p := &proto.PositionTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	item, err := p.Get(ctx)
	if err != nil {
		return 0, 0, err
	}
	pos, err := datatype.DecodeD700(item.Data)
	if err != nil {
		return 0, 0, wire.NewProtocolError("decode position", err)
	}
	lat, lon = pos.Degrees()
	return lat, lon, nil
}

// PVT returns the streaming protocol handle. DataOn starts the
// once-per-second stream, Get blocks for the next packet, DataOff stops
// it; callers drain until a read times out.
func (d *Device) PVT() (*proto.PVTTransfer, error) {
	b, err := d.reg.Get(registry.RolePVT)
	if err != nil {
		return nil, err
	}
	return &proto.PVTTransfer{
		Transfer:        d.transfer(),
		Schemas:         b.Schemas,
		SatelliteSchema: datatype.SatelliteSchema(),
	}, nil
}

// FitnessUserProfile downloads the fitness user profile record.
func (d *Device) FitnessUserProfile(ctx context.Context) (proto.Item, error) {
	b, err := d.reg.Get(registry.RoleFitnessProfile)
	if err != nil {
		return proto.Item{}, err
	}
	p := &proto.FitnessProfileTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Get(ctx)
}

// WorkoutLimits downloads the device's workout capacity record.
func (d *Device) WorkoutLimits(ctx context.Context) (proto.Item, error) {
	b, err := d.reg.Get(registry.RoleWorkoutLimits)
	if err != nil {
		return proto.Item{}, err
	}
	p := &proto.WorkoutLimitsTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Get(ctx)
}

// CourseLimits downloads the device's course capacity record.
func (d *Device) CourseLimits(ctx context.Context) (proto.Item, error) {
	b, err := d.reg.Get(registry.RoleCourseLimits)
	if err != nil {
		return proto.Item{}, err
	}
	p := &proto.CourseLimitsTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Get(ctx)
}

// SyncTime pushes an external time reference to a device that reports
// A1051.
func (d *Device) SyncTime(ctx context.Context, data []byte) error {
	b, err := d.reg.Get(registry.RoleTimeSync)
	if err != nil {
		return err
	}
	p := &proto.TimeSyncTransfer{Transfer: d.transfer(), Schemas: b.Schemas}
	return p.Put(ctx, data)
}

// MapMemoryProperties reads (and caches for the session) the map region
// capacity record.
func (d *Device) MapMemoryProperties(ctx context.Context) (proto.MemProperties, error) {
	p, err := d.mapTransfer()
	if err != nil {
		return proto.MemProperties{}, err
	}
	return p.MemoryProperties(ctx)
}

// ReadMap downloads the supplementary map region, or one of its subfiles
// when subfile is non-empty.
func (d *Device) ReadMap(ctx context.Context, subfile string, cb proto.Progress) ([]byte, error) {
	p, err := d.mapTransfer()
	if err != nil {
		return nil, err
	}
	return p.ReadRegion(ctx, subfile, cb)
}

// WriteMap uploads a map image to the supplementary region. When the
// transport is serial and the device reports T001, the baud rate is
// raised for the write and restored afterward. unlockKey may be nil.
func (d *Device) WriteMap(ctx context.Context, data []byte, unlockKey []byte, cb proto.Progress) error {
	p, err := d.mapTransfer()
	if err != nil {
		return err
	}
	if len(unlockKey) > 0 {
		if _, err := d.reg.Get(registry.RoleMapUnlock); err != nil {
			return err
		}
		unlock := &proto.MapUnlock{Transfer: d.transfer()}
		if err := unlock.SendKey(ctx, unlockKey); err != nil {
			return err
		}
	}
	restore := func() {}
	if d.serial != nil && d.reg.Has(registry.RoleTransmission) {
		tx := &proto.Transmission{Transfer: d.transfer(), Phys: d.serial}
		rates, err := tx.SupportedBaudrates(ctx)
		if err == nil && len(rates) > 0 {
			best := rates[0]
			for _, r := range rates {
				if r > best {
					best = r
				}
			}
			if best > wire.DefaultBaudRate {
				if _, err := tx.SetBaudrate(ctx, best); err == nil {
					restore = func() {
						if _, err := tx.SetBaudrate(ctx, wire.DefaultBaudRate); err != nil {
							logging.Warnf("map write: baud restore failed: %v", err)
						}
					}
				}
			}
		}
	}
	defer restore()
	return p.WriteRegion(ctx, data, cb)
}

func (d *Device) mapTransfer() (*proto.MapTransfer, error) {
	if _, err := d.reg.Get(registry.RoleMapTransfer); err != nil {
		return nil, err
	}
	if d.mapt == nil {
		d.mapt = &proto.MapTransfer{Transfer: d.transfer()}
	}
	return d.mapt, nil
}

// ImageTypes lists the image slot categories.
func (d *Device) ImageTypes(ctx context.Context) ([]proto.ImageType, error) {
	p := &proto.ImageTransfer{Transfer: d.transfer()}
	return p.GetTypes(ctx)
}

// ImageList lists every image slot with its name.
func (d *Device) ImageList(ctx context.Context) ([]proto.ImageSlot, error) {
	p := &proto.ImageTransfer{Transfer: d.transfer()}
	return p.GetList(ctx)
}

// Image downloads slot idx as a top-down, unpadded bitmap.
func (d *Device) Image(ctx context.Context, idx uint16, cb proto.Progress) (*proto.Bitmap, error) {
	p := &proto.ImageTransfer{Transfer: d.transfer()}
	return p.Get(ctx, idx, cb)
}

// PutImage uploads a bitmap already conforming to the slot's format.
func (d *Device) PutImage(ctx context.Context, idx uint16, bmp *proto.Bitmap, cb proto.Progress) error {
	p := &proto.ImageTransfer{Transfer: d.transfer()}
	return p.Put(ctx, idx, bmp, cb)
}

// Screenshot captures the current screen.
func (d *Device) Screenshot(ctx context.Context, cb proto.Progress) (*proto.Bitmap, error) {
	p := &proto.ScreenshotTransfer{Transfer: d.transfer()}
	return p.Get(ctx, cb)
}
