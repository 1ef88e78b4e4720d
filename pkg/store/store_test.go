package store

import (
	"errors"
	"fmt"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/planetarium/pkg/model"
)

func TestAddDivision_AssignsFreshIDs(t *testing.T) {
	s := New()

	a, err := s.AddDivision(DivisionSpec{Label: "Engineering"})
	if err != nil {
		t.Fatalf("AddDivision failed: %v", err)
	}
	b, err := s.AddDivision(DivisionSpec{Label: "Sales"})
	if err != nil {
		t.Fatalf("AddDivision failed: %v", err)
	}
	if a.ID == "" || b.ID == "" {
		t.Fatal("expected non-empty generated ids")
	}
	if a.ID == b.ID {
		t.Errorf("generated ids collide: %q", a.ID)
	}
}

func TestAddDivision_DuplicateExplicitID(t *testing.T) {
	s := New()
	if _, err := s.AddDivision(DivisionSpec{ID: "p1"}); err != nil {
		t.Fatalf("AddDivision failed: %v", err)
	}

	_, err := s.AddDivision(DivisionSpec{ID: "p1"})
	if !errors.Is(err, model.ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
	if divs, _ := s.Counts(); divs != 1 {
		t.Errorf("expected 1 division after rejected add, got %d", divs)
	}
}

func TestAddDivision_GeneratedIDSkipsTakenIDs(t *testing.T) {
	s := New()
	// Occupy the id the counter would produce first.
	if _, err := s.AddDivision(DivisionSpec{ID: "div-1"}); err != nil {
		t.Fatalf("AddDivision failed: %v", err)
	}
	div, err := s.AddDivision(DivisionSpec{})
	if err != nil {
		t.Fatalf("AddDivision failed: %v", err)
	}
	if div.ID == "div-1" {
		t.Error("generated id collided with explicit id")
	}
}

func TestRemoveDivision_CascadesConnections(t *testing.T) {
	s := New()
	mustDivision(t, s, "p1")
	mustDivision(t, s, "p2")
	mustDivision(t, s, "p3")
	mustConnection(t, s, "p1", "p2", model.ConnectionHierarchy)
	mustConnection(t, s, "p2", "p3", model.ConnectionCollaboration)
	mustConnection(t, s, "p3", "p1", model.ConnectionInformation)

	s.RemoveDivision("p2")

	snap := s.Snapshot()
	if len(snap.Divisions) != 2 {
		t.Fatalf("expected 2 divisions, got %d", len(snap.Divisions))
	}
	for _, conn := range snap.Connections {
		if conn.SourceID == "p2" || conn.TargetID == "p2" {
			t.Errorf("dangling connection %s references removed division", conn.ID)
		}
	}
	if len(snap.Connections) != 1 {
		t.Errorf("expected 1 surviving connection, got %d", len(snap.Connections))
	}
}

func TestRemoveDivision_AbsentIsNoop(t *testing.T) {
	s := New()
	mustDivision(t, s, "p1")
	s.RemoveDivision("ghost")
	if divs, _ := s.Counts(); divs != 1 {
		t.Errorf("expected 1 division, got %d", divs)
	}
}

func TestAddConnection_UnknownEndpointLeavesStoreUntouched(t *testing.T) {
	s := New()
	mustDivision(t, s, "p1")

	cases := []struct {
		name           string
		source, target string
	}{
		{"unknown target", "p1", "ghost"},
		{"unknown source", "ghost", "p1"},
		{"both unknown", "ghost", "phantom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, before := s.Counts()
			_, err := s.AddConnection(tc.source, tc.target, model.ConnectionHierarchy)
			if !errors.Is(err, model.ErrUnknownEndpoint) {
				t.Errorf("expected ErrUnknownEndpoint, got %v", err)
			}
			if _, after := s.Counts(); after != before {
				t.Errorf("connection count changed %d -> %d on failed add", before, after)
			}
		})
	}
}

func TestAddConnection_InvalidType(t *testing.T) {
	s := New()
	mustDivision(t, s, "p1")
	mustDivision(t, s, "p2")

	_, err := s.AddConnection("p1", "p2", model.ConnectionType("friendship"))
	if !errors.Is(err, model.ErrUnknownConnectionType) {
		t.Errorf("expected ErrUnknownConnectionType, got %v", err)
	}
}

func TestAddConnection_DuplicateTripleIsIdempotent(t *testing.T) {
	s := New()
	mustDivision(t, s, "p1")
	mustDivision(t, s, "p2")

	first, err := s.AddConnection("p1", "p2", model.ConnectionHierarchy)
	if err != nil {
		t.Fatalf("AddConnection failed: %v", err)
	}
	second, err := s.AddConnection("p1", "p2", model.ConnectionHierarchy)
	if err != nil {
		t.Fatalf("duplicate AddConnection should no-op, got error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("duplicate add returned different connection: %q vs %q", first.ID, second.ID)
	}
	if _, conns := s.Counts(); conns != 1 {
		t.Errorf("expected exactly 1 stored connection, got %d", conns)
	}

	// Reverse direction and a different type are distinct triples.
	if _, err := s.AddConnection("p2", "p1", model.ConnectionHierarchy); err != nil {
		t.Fatalf("reverse AddConnection failed: %v", err)
	}
	if _, err := s.AddConnection("p1", "p2", model.ConnectionInformation); err != nil {
		t.Fatalf("typed AddConnection failed: %v", err)
	}
	if _, conns := s.Counts(); conns != 3 {
		t.Errorf("expected 3 connections, got %d", conns)
	}
}

func TestRemoveConnection_ReallowsTriple(t *testing.T) {
	s := New()
	mustDivision(t, s, "p1")
	mustDivision(t, s, "p2")
	conn := mustConnection(t, s, "p1", "p2", model.ConnectionHierarchy)

	s.RemoveConnection(conn.ID)
	if _, conns := s.Counts(); conns != 0 {
		t.Fatalf("expected empty connections, got %d", conns)
	}

	again := mustConnection(t, s, "p1", "p2", model.ConnectionHierarchy)
	if again.ID == conn.ID {
		t.Errorf("recreated connection reused id %q", conn.ID)
	}
}

func TestMoveDivision(t *testing.T) {
	s := New()
	mustDivision(t, s, "p1")

	if !s.MoveDivision("p1", r3.Vec{X: 5, Y: 5}) {
		t.Fatal("MoveDivision returned false for existing division")
	}
	div, _ := s.Division("p1")
	if div.Position != (r3.Vec{X: 5, Y: 5}) {
		t.Errorf("position not committed: %+v", div.Position)
	}
	if s.MoveDivision("ghost", r3.Vec{}) {
		t.Error("MoveDivision returned true for absent division")
	}
}

func TestRelabelDivision(t *testing.T) {
	s := New()
	mustDivision(t, s, "p1")

	if !s.RelabelDivision("p1", "Engineering") {
		t.Fatal("RelabelDivision returned false for existing division")
	}
	div, _ := s.Division("p1")
	if div.Label != "Engineering" {
		t.Errorf("label not committed: %q", div.Label)
	}
	if s.RelabelDivision("ghost", "x") {
		t.Error("RelabelDivision returned true for absent division")
	}
}

func TestSetVisualSettings_AllOrNothing(t *testing.T) {
	s := New()
	prior := s.VisualSettings()

	bad := 1.5
	size := 2.0
	err := s.SetVisualSettings(VisualSettingsPatch{
		ConnectionOpacity: &bad,
		PlanetSize:        &size,
	})
	if !errors.Is(err, model.ErrInvalidSetting) {
		t.Fatalf("expected ErrInvalidSetting, got %v", err)
	}
	if got := s.VisualSettings(); got != prior {
		t.Errorf("settings mutated by rejected patch: %+v", got)
	}

	ok := 0.5
	labels := false
	if err := s.SetVisualSettings(VisualSettingsPatch{
		ConnectionOpacity: &ok,
		ShowLabels:        &labels,
	}); err != nil {
		t.Fatalf("valid patch rejected: %v", err)
	}
	got := s.VisualSettings()
	if got.ConnectionOpacity != 0.5 || got.ShowLabels {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.PlanetSize != prior.PlanetSize {
		t.Errorf("untouched field changed: %v", got.PlanetSize)
	}
}

func TestSetVisualSettings_Validation(t *testing.T) {
	cases := []struct {
		name  string
		patch func(v float64) VisualSettingsPatch
		value float64
		valid bool
	}{
		{"opacity zero", func(v float64) VisualSettingsPatch { return VisualSettingsPatch{ConnectionOpacity: &v} }, 0, true},
		{"opacity one", func(v float64) VisualSettingsPatch { return VisualSettingsPatch{ConnectionOpacity: &v} }, 1, true},
		{"opacity negative", func(v float64) VisualSettingsPatch { return VisualSettingsPatch{ConnectionOpacity: &v} }, -0.1, false},
		{"planet size zero", func(v float64) VisualSettingsPatch { return VisualSettingsPatch{PlanetSize: &v} }, 0, false},
		{"planet size positive", func(v float64) VisualSettingsPatch { return VisualSettingsPatch{PlanetSize: &v} }, 3.5, true},
		{"glow negative", func(v float64) VisualSettingsPatch { return VisualSettingsPatch{GlowIntensity: &v} }, -1, false},
		{"glow zero", func(v float64) VisualSettingsPatch { return VisualSettingsPatch{GlowIntensity: &v} }, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			err := s.SetVisualSettings(tc.patch(tc.value))
			if tc.valid && err != nil {
				t.Errorf("expected accept, got %v", err)
			}
			if !tc.valid && !errors.Is(err, model.ErrInvalidSetting) {
				t.Errorf("expected ErrInvalidSetting, got %v", err)
			}
		})
	}
}

func TestSnapshot_Immutable(t *testing.T) {
	s := New()
	if _, err := s.AddDivision(DivisionSpec{ID: "p1", Metadata: map[string]string{"head": "ada"}}); err != nil {
		t.Fatalf("AddDivision failed: %v", err)
	}

	snap := s.Snapshot()
	snap.Divisions[0].Label = "hijacked"
	snap.Divisions[0].Metadata["head"] = "mallory"

	div, _ := s.Division("p1")
	if div.Label == "hijacked" {
		t.Error("snapshot mutation leaked into store label")
	}
	if div.Metadata["head"] != "ada" {
		t.Error("snapshot mutation leaked into store metadata")
	}
}

// Property: after removing any division, no stored connection references it.
func TestRemoveDivision_NoDanglingEndpoints_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()
		n := rapid.IntRange(2, 12).Draw(t, "divisions")
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("p%d", i)
			if _, err := s.AddDivision(DivisionSpec{ID: ids[i]}); err != nil {
				t.Fatalf("AddDivision failed: %v", err)
			}
		}
		edges := rapid.IntRange(0, 30).Draw(t, "edges")
		for i := 0; i < edges; i++ {
			src := rapid.SampledFrom(ids).Draw(t, "src")
			dst := rapid.SampledFrom(ids).Draw(t, "dst")
			typ := rapid.SampledFrom(model.ConnectionTypes).Draw(t, "type")
			if _, err := s.AddConnection(src, dst, typ); err != nil {
				t.Fatalf("AddConnection failed: %v", err)
			}
		}

		victim := rapid.SampledFrom(ids).Draw(t, "victim")
		s.RemoveDivision(victim)

		for _, conn := range s.Snapshot().Connections {
			if conn.SourceID == victim || conn.TargetID == victim {
				t.Fatalf("connection %s still references removed %s", conn.ID, victim)
			}
		}
	})
}

func mustDivision(t *testing.T, s *Store, id string) model.Division {
	t.Helper()
	div, err := s.AddDivision(DivisionSpec{ID: id, Label: id})
	if err != nil {
		t.Fatalf("AddDivision(%s) failed: %v", id, err)
	}
	return div
}

func mustConnection(t *testing.T, s *Store, src, dst string, typ model.ConnectionType) model.Connection {
	t.Helper()
	conn, err := s.AddConnection(src, dst, typ)
	if err != nil {
		t.Fatalf("AddConnection(%s->%s) failed: %v", src, dst, err)
	}
	return conn
}
