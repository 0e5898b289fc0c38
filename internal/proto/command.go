// internal/proto/command.go
//
// Command-id tables for Device Command Protocols A010/A011. A command is
// a 16-bit little-endian code carried in a pid_command_data packet.
package proto

// CmdUnsupported marks a command the negotiated command protocol does not
// define. Sending it is a ProtocolError, not a wire write.
const CmdUnsupported uint16 = 0xFFFF

// Commands is the command-id table bound by the registry from the
// negotiated device command protocol.
type Commands struct {
	AbortTransfer              uint16
	TransferAlm                uint16
	TransferPosn               uint16
	TransferPrx                uint16
	TransferRte                uint16
	TransferTime               uint16
	TransferTrk                uint16
	TransferWpt                uint16
	TurnOffPwr                 uint16
	TransferUnitID             uint16
	TransferScreen             uint16
	StartPvtData               uint16
	StopPvtData                uint16
	TransferBaud               uint16
	AckPing                    uint16
	TransferMem                uint16
	FlightbookTransfer         uint16
	TransferLaps               uint16
	TransferWptCats            uint16
	TransferRuns               uint16
	TransferWorkouts           uint16
	TransferWorkoutOccurrences uint16
	TransferFitnessUserProfile uint16
	TransferWorkoutLimits      uint16
	TransferCourses            uint16
	TransferCourseLaps         uint16
	TransferCoursePoints       uint16
	TransferCourseTracks       uint16
	TransferCourseLimits       uint16
}

// A010 is the command table used by nearly every device. The screen,
// baud, ping, and memory commands are undocumented but well established.
var A010 = Commands{
	AbortTransfer:              0,
	TransferAlm:                1,
	TransferPosn:               2,
	TransferPrx:                3,
	TransferRte:                4,
	TransferTime:               5,
	TransferTrk:                6,
	TransferWpt:                7,
	TurnOffPwr:                 8,
	TransferUnitID:             14,
	TransferScreen:             32,
	StartPvtData:               49,
	StopPvtData:                50,
	TransferBaud:               57,
	AckPing:                    58,
	TransferMem:                63,
	FlightbookTransfer:         92,
	TransferLaps:               117,
	TransferWptCats:            121,
	TransferRuns:               450,
	TransferWorkouts:           451,
	TransferWorkoutOccurrences: 452,
	TransferFitnessUserProfile: 453,
	TransferWorkoutLimits:      454,
	TransferCourses:            561,
	TransferCourseLaps:         562,
	TransferCoursePoints:       563,
	TransferCourseTracks:       564,
	TransferCourseLimits:       565,
}

// A011 is the alternate table a handful of early devices use. It defines
// only the basic transfers; everything else is unsupported on those units.
var A011 = Commands{
	AbortTransfer:              0,
	TransferAlm:                4,
	TransferRte:                8,
	TransferPrx:                17,
	TransferTime:               20,
	TransferWpt:                21,
	TurnOffPwr:                 26,
	TransferPosn:               CmdUnsupported,
	TransferTrk:                CmdUnsupported,
	TransferUnitID:             CmdUnsupported,
	TransferScreen:             CmdUnsupported,
	StartPvtData:               CmdUnsupported,
	StopPvtData:                CmdUnsupported,
	TransferBaud:               CmdUnsupported,
	AckPing:                    CmdUnsupported,
	TransferMem:                CmdUnsupported,
	FlightbookTransfer:         CmdUnsupported,
	TransferLaps:               CmdUnsupported,
	TransferWptCats:            CmdUnsupported,
	TransferRuns:               CmdUnsupported,
	TransferWorkouts:           CmdUnsupported,
	TransferWorkoutOccurrences: CmdUnsupported,
	TransferFitnessUserProfile: CmdUnsupported,
	TransferWorkoutLimits:      CmdUnsupported,
	TransferCourses:            CmdUnsupported,
	TransferCourseLaps:         CmdUnsupported,
	TransferCoursePoints:       CmdUnsupported,
	TransferCourseTracks:       CmdUnsupported,
	TransferCourseLimits:       CmdUnsupported,
}
