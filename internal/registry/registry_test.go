// internal/registry/registry_test.go
package registry

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/guiperry/garminlink/internal/capability"
	"github.com/guiperry/garminlink/internal/link"
	"github.com/guiperry/garminlink/internal/proto"
	"github.com/guiperry/garminlink/internal/wire"
)

func tag(class capability.ProtocolClass, n uint16) capability.ProtocolTag {
	return capability.ProtocolTag{Class: class, Tag: n}
}

func dt(n uint16) capability.DatatypeTag { return capability.DatatypeTag{Tag: n} }

func testSet() capability.Set {
	return capability.Set{
		{Protocol: tag(capability.ClassLink, 1)},
		{Protocol: tag(capability.ClassApplication, 10)},
		{Protocol: tag(capability.ClassApplication, 100), Datatypes: []capability.DatatypeTag{dt(100)}},
		{Protocol: tag(capability.ClassApplication, 201), Datatypes: []capability.DatatypeTag{dt(201), dt(100), dt(210)}},
		{Protocol: tag(capability.ClassApplication, 600), Datatypes: []capability.DatatypeTag{dt(600)}},
	}
}

func TestBuildBindsRoles(t *testing.T) {
	r := Build(testSet())

	for _, role := range []Role{RoleLink, RoleCommand, RoleWaypoint, RoleRoute, RoleDateTime} {
		if !r.Has(role) {
			t.Errorf("expected role %s to be bound", role)
		}
	}
	if r.Has(RoleTrack) {
		t.Error("track role bound without the device reporting it")
	}

	b, err := r.Get(RoleRoute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Protocol.Tag != 201 {
		t.Errorf("route variant = %d, want 201", b.Protocol.Tag)
	}
	if len(b.Schemas) != 3 {
		t.Fatalf("route schemas = %d, want 3", len(b.Schemas))
	}
	for i, s := range b.Schemas {
		if s == nil {
			t.Errorf("route schema slot %d unresolved", i)
		}
	}
}

func TestBuildDefaultsToL001A010(t *testing.T) {
	r := Build(capability.Set{
		{Protocol: tag(capability.ClassApplication, 100), Datatypes: []capability.DatatypeTag{dt(100)}},
	})
	if r.Pids() != link.L001 {
		t.Error("expected L001 pid table by default")
	}
	if r.Commands() != proto.A010 {
		t.Error("expected A010 command table by default")
	}
}

func TestBuildSwitchesToL002A011(t *testing.T) {
	r := Build(capability.Set{
		{Protocol: tag(capability.ClassLink, 2)},
		{Protocol: tag(capability.ClassApplication, 11)},
	})
	if r.Pids() != link.L002 {
		t.Error("expected L002 pid table")
	}
	if r.Commands() != proto.A011 {
		t.Error("expected A011 command table")
	}
}

func TestBuildSkipsUnknownTags(t *testing.T) {
	r := Build(capability.Set{
		{Protocol: tag(capability.ClassApplication, 9999)},
		{Protocol: tag(capability.ClassApplication, 100), Datatypes: []capability.DatatypeTag{dt(100)}},
	})
	if len(r.Roles()) != 1 {
		t.Errorf("bound %d roles, want 1", len(r.Roles()))
	}
}

func TestBuildKeepsUnknownDatatypeSlotNil(t *testing.T) {
	r := Build(capability.Set{
		{Protocol: tag(capability.ClassApplication, 100), Datatypes: []capability.DatatypeTag{dt(9999)}},
	})
	b, err := r.Get(RoleWaypoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Schemas) != 1 || b.Schemas[0] != nil {
		t.Error("expected one nil schema slot for the unknown datatype")
	}
}

func TestGetMissingRoleIsProtocolError(t *testing.T) {
	r := Build(testSet())
	_, err := r.Get(RolePVT)
	var pe *wire.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *wire.ProtocolError, got %T: %v", err, err)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a, b := Build(testSet()), Build(testSet())
	ra, rb := a.Roles(), b.Roles()
	sort.Slice(ra, func(i, j int) bool { return ra[i] < ra[j] })
	sort.Slice(rb, func(i, j int) bool { return rb[i] < rb[j] })
	if !reflect.DeepEqual(ra, rb) {
		t.Errorf("role sets differ across builds: %v vs %v", ra, rb)
	}
}
