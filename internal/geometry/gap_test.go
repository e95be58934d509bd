package geometry

import "testing"

func TestConcentricGap(t *testing.T) {
	// Inner octagon r=1000, outer octagon r=2000, z in [0,100], tol=1mm.
	g := NewConcentricGap(0, 100, 1000, 0, 8, 2000, 0, 8)

	cases := []struct {
		name string
		pos  Vector3
		want bool
	}{
		{"between polygons, in z range", Vector3{1500, 0, 50}, true},
		{"inside inner polygon", Vector3{500, 0, 50}, false},
		{"outside outer polygon", Vector3{3000, 0, 50}, false},
		{"within z tolerance above zmax", Vector3{1500, 0, 100.5}, true},
		{"beyond z tolerance above zmax", Vector3{1500, 0, 101.5}, false},
		{"within z tolerance below zmin", Vector3{1500, 0, -0.5}, true},
		// Along a vertex direction (22.5 deg for an octagon), the polygon
		// boundary sits at the circumradius (~2164.8 for apothem 2000),
		// well beyond this point's r=1900. The old circumradius-as-radius
		// convention placed a vertex at phi0=0 instead, making this
		// direction an edge-center (apothem ~1847.8) that 1900 would have
		// failed, wrongly reporting the point as outside the outer
		// polygon.
		{"near outer vertex direction, inside apothem-correct boundary", Vector3{1755.37, 727.09, 50}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := g.Contains(c.pos, 1.0); got != c.want {
				t.Errorf("Contains(%v) = %v, want %v", c.pos, got, c.want)
			}
		})
	}
}

func TestBoxGap(t *testing.T) {
	g := &BoxGap{
		Vertex: Vector3{0, 0, 0},
		Side1:  Vector3{100, 0, 0},
		Side2:  Vector3{0, 50, 0},
		Side3:  Vector3{0, 0, 10},
	}
	if !g.Contains(Vector3{50, 25, 5}, 0) {
		t.Error("expected point inside box to be contained")
	}
	if g.Contains(Vector3{150, 25, 5}, 0) {
		t.Error("expected point outside box to not be contained")
	}
	if !g.Contains(Vector3{101, 25, 5}, 2) {
		t.Error("expected point just outside box to be contained within tolerance")
	}
}

func TestLineGap(t *testing.T) {
	g := &LineGap{HitType: HitTypeTPCView, Type: LineGapZ, Min: 10, Max: 20}
	if !g.Contains(Vector3{0, 0, 15}, 0) {
		t.Error("expected z=15 within [10,20] to be contained")
	}
	if g.Contains(Vector3{0, 0, 25}, 0) {
		t.Error("expected z=25 outside [10,20] to not be contained")
	}
	if !g.ContainsForHitType(Vector3{0, 0, 15}, HitTypeTPCView, 0) {
		t.Error("expected hit-type match to be contained")
	}
	if g.ContainsForHitType(Vector3{0, 0, 15}, HitTypeECAL, 0) {
		t.Error("expected hit-type mismatch to not be contained")
	}
}

func TestGranularity(t *testing.T) {
	ctx := NewContext()
	if g := ctx.Granularity(HitTypeECAL, RegionBarrel); g != GranularityFine {
		t.Errorf("default ECAL granularity = %v, want Fine", g)
	}
	ctx.SetGranularityOverride(HitTypeECAL, RegionEndcap, GranularityCoarse)
	if g := ctx.Granularity(HitTypeECAL, RegionEndcap); g != GranularityCoarse {
		t.Errorf("overridden ECAL/endcap granularity = %v, want Coarse", g)
	}
	if g := ctx.Granularity(HitTypeECAL, RegionBarrel); g != GranularityFine {
		t.Errorf("unrelated override changed barrel granularity to %v", g)
	}
}
