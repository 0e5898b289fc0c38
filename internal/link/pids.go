// internal/link/pids.go
//
// Packet-id constant tables for Link Protocols L000/L001/L002, per the
// link-protocol sections of Garmin's Device Interface Specification.
package link

// Pids is the set of packet ids a given device's link layer uses. Nearly
// every device on the market speaks L001; a handful of very old units use
// the alternate L002 numbering. Selected once during session bootstrap
// (internal/registry) and threaded through internal/proto.
type Pids struct {
	// L000 — common to every device.
	ExtProductData uint16
	ProtocolArray  uint16
	ProductRqst    uint16
	ProductData    uint16

	// L001/L002 — application packet ids.
	CommandData         uint16
	XferCmplt            uint16
	DateTimeData         uint16
	PositionData         uint16
	PrxWptData           uint16
	Records              uint16
	EnableAsyncEvents    uint16
	RteHdr               uint16
	RteWptData           uint16
	AlmanacData          uint16
	TrkData              uint16
	WptData              uint16
	MemWrite             uint16
	UnitID               uint16
	MemWrdi              uint16
	BaudRqstData         uint16
	BaudAcptData         uint16
	PvtData              uint16
	SatelliteData        uint16
	ScreenData           uint16
	MemWel               uint16
	MemWren              uint16
	MemRead              uint16
	MemChunk             uint16
	MemRecords           uint16
	MemData              uint16
	CapacityData         uint16
	RteLinkData          uint16
	TrkHdr               uint16
	TxUnlockKey          uint16
	AckUnlockKey         uint16
	FlightbookRecord     uint16
	Lap                  uint16
	WptCat               uint16
	BaudData             uint16
	ImageNameRx          uint16
	ImageNameTx          uint16
	ImageListRx          uint16
	ImageListTx          uint16
	ImagePropsRx         uint16
	ImagePropsTx         uint16
	ImageIDRx            uint16
	ImageIDTx            uint16
	ImageDataCmplt       uint16
	ImageDataRx          uint16
	ImageDataTx          uint16
	ColorTableRx         uint16
	ColorTableTx         uint16
	ImageTypeIdxRx       uint16
	ImageTypeIdxTx       uint16
	ImageTypeNameRx      uint16
	ImageTypeNameTx      uint16
	Run                  uint16
	Workout              uint16
	WorkoutOccurrence    uint16
	FitnessUserProfile   uint16
	WorkoutLimits        uint16
	Course               uint16
	CourseLap            uint16
	CoursePoint          uint16
	CourseTrkHdr         uint16
	CourseTrkData        uint16
	CourseLimits         uint16
	ExternalTimeSyncData uint16
}

// L001 is the packet-id table used by the overwhelming majority of Garmin
// devices.
var L001 = Pids{
	ExtProductData:       248,
	ProtocolArray:        253,
	ProductRqst:          254,
	ProductData:          255,

	CommandData:          10,
	XferCmplt:            12,
	DateTimeData:         14,
	PositionData:         17,
	PrxWptData:           19,
	Records:              27,
	EnableAsyncEvents:    28,
	RteHdr:               29,
	RteWptData:           30,
	AlmanacData:          31,
	TrkData:              34,
	WptData:              35,
	MemWrite:             36,
	UnitID:               38,
	MemWrdi:              45,
	BaudRqstData:         48,
	BaudAcptData:         49,
	PvtData:              51,
	SatelliteData:        114,
	ScreenData:           69,
	MemWel:               74,
	MemWren:              75,
	MemRead:              89,
	MemChunk:             90,
	MemRecords:           91,
	MemData:              92,
	CapacityData:         95,
	RteLinkData:          98,
	TrkHdr:               99,
	TxUnlockKey:          108,
	AckUnlockKey:         109,
	FlightbookRecord:     134,
	Lap:                  149,
	WptCat:               152,
	BaudData:             252,
	ImageNameRx:          875,
	ImageNameTx:          876,
	ImageListRx:          877,
	ImageListTx:          878,
	ImagePropsRx:         879,
	ImagePropsTx:         880,
	ImageIDRx:            881,
	ImageIDTx:            882,
	ImageDataCmplt:       883,
	ImageDataRx:          884,
	ImageDataTx:          885,
	ColorTableRx:         886,
	ColorTableTx:         887,
	ImageTypeIdxRx:       888,
	ImageTypeIdxTx:       889,
	ImageTypeNameRx:      890,
	ImageTypeNameTx:      891,
	Run:                  990,
	Workout:              991,
	WorkoutOccurrence:    992,
	FitnessUserProfile:   993,
	WorkoutLimits:        994,
	Course:               1061,
	CourseLap:            1062,
	CoursePoint:          1063,
	CourseTrkHdr:         1064,
	CourseTrkData:        1065,
	CourseLimits:         1066,
	ExternalTimeSyncData: 6724,
}

// L002 is the alternate numbering a small number of early devices use.
// Only the ids that actually differ from L001 are overridden here;
// everything else (images, workouts, courses, all introduced after L002's
// devices shipped) is inherited from L001.
var L002 = func() Pids {
	p := L001
	p.AlmanacData = 4
	p.CommandData = 11
	p.XferCmplt = 12
	p.DateTimeData = 20
	p.PositionData = 24
	p.PrxWptData = 27
	p.Records = 35
	p.RteHdr = 37
	p.RteWptData = 39
	p.WptData = 43
	return p
}()

// pid_ack_byte/pid_nak_byte and the USB session pids live in internal/wire
// since they're consumed below the Link layer, not by it.
