// internal/registry/registry.go
//
// Binds the negotiated capability set to live protocol roles: each
// reported application protocol tag resolves to a role name and its
// datatype tags resolve, positionally, to compiled schemas. Built once
// per session; roles the device did not report are absent and invoking
// them is a ProtocolError.
package registry

import (
	"fmt"

	"github.com/guiperry/garminlink/internal/capability"
	"github.com/guiperry/garminlink/internal/datatype"
	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/logging"
	"github.com/guiperry/garminlink/internal/proto"
	"github.com/guiperry/garminlink/internal/schema"
	"github.com/guiperry/garminlink/internal/wire"
)

// Role names one protocol slot a device can fill.
type Role string

const (
	RoleLink              Role = "link_protocol"
	RoleProductData       Role = "product_data_protocol"
	RoleCapability        Role = "protocol_capability_protocol"
	RoleCommand           Role = "device_command_protocol"
	RoleTransmission      Role = "transmission_protocol"
	RoleWaypoint          Role = "waypoint_transfer_protocol"
	RoleWaypointCategory  Role = "waypoint_category_transfer_protocol"
	RoleRoute             Role = "route_transfer_protocol"
	RoleTrack             Role = "track_log_transfer_protocol"
	RoleProximity         Role = "proximity_waypoint_transfer_protocol"
	RoleAlmanac           Role = "almanac_transfer_protocol"
	RoleDateTime          Role = "date_and_time_initialization_protocol"
	RoleFlightbook        Role = "flightbook_transfer_protocol"
	RolePosition          Role = "position_initialization_protocol"
	RolePVT               Role = "pvt_protocol"
	RoleMapTransfer       Role = "map_transfer_protocol"
	RoleMapUnlock         Role = "map_unlock_protocol"
	RoleLap               Role = "lap_transfer_protocol"
	RoleRun               Role = "run_transfer_protocol"
	RoleWorkout           Role = "workout_transfer_protocol"
	RoleWorkoutOccurrence Role = "workout_occurrence_transfer_protocol"
	RoleFitnessProfile    Role = "fitness_user_profile_transfer_protocol"
	RoleWorkoutLimits     Role = "workout_limits_transfer_protocol"
	RoleCourse            Role = "course_transfer_protocol"
	RoleCourseLap         Role = "course_lap_transfer_protocol"
	RoleCoursePoint       Role = "course_point_transfer_protocol"
	RoleCourseLimits      Role = "course_limits_transfer_protocol"
	RoleCourseTrack       Role = "course_track_transfer_protocol"
	RoleTimeSync          Role = "external_time_data_sync_protocol"
)

// roleOf maps an application/link/transmission tag to its role. A000 and
// A001 are bound for completeness even though bootstrap has already run
// them by the time the registry exists. Tags absent here are unknown and
// skipped.
var roleOf = map[capability.ProtocolTag]Role{
	{Class: capability.ClassLink, Tag: 1}: RoleLink,
	{Class: capability.ClassLink, Tag: 2}: RoleLink,
	{Class: capability.ClassApplication, Tag: 0}: RoleProductData,
	{Class: capability.ClassApplication, Tag: 1}: RoleCapability,
	{Class: capability.ClassApplication, Tag: 10}: RoleCommand,
	{Class: capability.ClassApplication, Tag: 11}: RoleCommand,
	{Class: capability.ClassTransmission, Tag: 1}: RoleTransmission,
	{Class: capability.ClassApplication, Tag: 100}: RoleWaypoint,
	{Class: capability.ClassApplication, Tag: 101}: RoleWaypointCategory,
	{Class: capability.ClassApplication, Tag: 200}: RoleRoute,
	{Class: capability.ClassApplication, Tag: 201}: RoleRoute,
	{Class: capability.ClassApplication, Tag: 300}: RoleTrack,
	{Class: capability.ClassApplication, Tag: 301}: RoleTrack,
	{Class: capability.ClassApplication, Tag: 302}: RoleTrack,
	{Class: capability.ClassApplication, Tag: 400}: RoleProximity,
	{Class: capability.ClassApplication, Tag: 500}: RoleAlmanac,
	{Class: capability.ClassApplication, Tag: 600}: RoleDateTime,
	{Class: capability.ClassApplication, Tag: 650}: RoleFlightbook,
	{Class: capability.ClassApplication, Tag: 700}: RolePosition,
	{Class: capability.ClassApplication, Tag: 800}: RolePVT,
	{Class: capability.ClassApplication, Tag: 900}: RoleMapTransfer,
	{Class: capability.ClassApplication, Tag: 902}: RoleMapUnlock,
	{Class: capability.ClassApplication, Tag: 906}: RoleLap,
	{Class: capability.ClassApplication, Tag: 1000}: RoleRun,
	{Class: capability.ClassApplication, Tag: 1002}: RoleWorkout,
	{Class: capability.ClassApplication, Tag: 1003}: RoleWorkoutOccurrence,
	{Class: capability.ClassApplication, Tag: 1004}: RoleFitnessProfile,
	{Class: capability.ClassApplication, Tag: 1005}: RoleWorkoutLimits,
	{Class: capability.ClassApplication, Tag: 1006}: RoleCourse,
	{Class: capability.ClassApplication, Tag: 1007}: RoleCourseLap,
	{Class: capability.ClassApplication, Tag: 1008}: RoleCoursePoint,
	{Class: capability.ClassApplication, Tag: 1009}: RoleCourseLimits,
	{Class: capability.ClassApplication, Tag: 1012}: RoleCourseTrack,
	{Class: capability.ClassApplication, Tag: 1051}: RoleTimeSync,
}

// Binding is one bound role: the tag that filled it and the schemas its
// datatype tags resolved to, positionally. A nil schema slot means the
// device reported a datatype this host has no layout for; a record on
// that slot fails at decode time, not at bind time.
type Binding struct {
	Protocol  capability.ProtocolTag
	Datatypes []capability.DatatypeTag
	Schemas   []*schema.Schema
}

// Registry is the per-session role table.
type Registry struct {
	bindings map[Role]Binding
	pids     link.Pids
	cmds     proto.Commands
}

// Build resolves a capability set into a Registry. Unknown protocol
// tags are logged and skipped. The link pid table and command table
// default to L001/A010 when the set does not name them.
func Build(set capability.Set) *Registry {
	r := &Registry{
		bindings: make(map[Role]Binding, len(set)),
		pids:     link.L001,
		cmds:     proto.A010,
	}
	for _, c := range set {
		role, ok := roleOf[c.Protocol]
		if !ok {
			logging.Warnf("registry: unknown protocol %s, skipping", c.Protocol)
			continue
		}
		binding := Binding{
			Protocol:  c.Protocol,
			Datatypes: c.Datatypes,
			Schemas:   make([]*schema.Schema, len(c.Datatypes)),
		}
		for i, dt := range c.Datatypes {
			s, ok := datatype.Lookup(dt.Tag)
			if !ok {
				logging.Warnf("registry: %s reports %s with no known layout", c.Protocol, dt)
				continue
			}
			binding.Schemas[i] = s
		}
		r.bindings[role] = binding

		switch role {
		case RoleLink:
			if c.Protocol.Tag == 2 {
				r.pids = link.L002
			}
		case RoleCommand:
			if c.Protocol.Tag == 11 {
				r.cmds = proto.A011
			}
		}
	}
	logging.Infof("registry: bound %d roles", len(r.bindings))
	return r
}

// Pids is the packet-id table the bound link protocol selects.
func (r *Registry) Pids() link.Pids { return r.pids }

// Commands is the command table the bound command protocol selects.
func (r *Registry) Commands() proto.Commands { return r.cmds }

// Has reports whether the device filled the role.
func (r *Registry) Has(role Role) bool {
	_, ok := r.bindings[role]
	return ok
}

// Get returns the role's binding, or a ProtocolError when the device
// does not support it.
func (r *Registry) Get(role Role) (Binding, error) {
	b, ok := r.bindings[role]
	if !ok {
		return Binding{}, wire.NewProtocolError("registry",
			fmt.Errorf("device does not support %s", role))
	}
	return b, nil
}

// Roles lists the bound roles, for diagnostics.
func (r *Registry) Roles() []Role {
	roles := make([]Role, 0, len(r.bindings))
	for role := range r.bindings {
		roles = append(roles, role)
	}
	return roles
}
