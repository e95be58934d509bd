package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/track"
)

// eventDocument is the on-disk JSON shape of one event: the hit
// population already organized into preliminary clusters, plus the
// extrapolated tracks to associate against. This loader is local to the
// CLI rather than a shared internal package: raw input ingestion (what
// upstream framework hands the core a clustered event as) is the
// enclosing framework's job, not this library's.
type eventDocument struct {
	Hits     []hitDocument     `json:"hits"`
	Clusters []clusterDocument `json:"clusters"`
	Tracks   []trackDocument   `json:"tracks"`
}

type vec3Document struct {
	X, Y, Z float64
}

type hitDocument struct {
	LocalID               int                `json:"id"`
	Position              vec3Document       `json:"position"`
	ExpectedDirection     vec3Document       `json:"expectedDirection"`
	HitType               string             `json:"hitType"`
	Region                string             `json:"region"`
	ElectromagneticEnergy float64            `json:"electromagneticEnergy"`
	HadronicEnergy        float64            `json:"hadronicEnergy"`
	MipEquivalentEnergy   float64            `json:"mipEquivalentEnergy"`
	PseudoLayer           int                `json:"pseudoLayer"`
	CellGeometry          string             `json:"cellGeometry"`
	CellSize0             float64            `json:"cellSize0"`
	CellSize1             float64            `json:"cellSize1"`
	MCParticleWeight      map[string]float64 `json:"mcParticleWeight,omitempty"`
}

type clusterDocument struct {
	HitIDs           []int   `json:"hitIds"`
	InitialDirection *vec3Document `json:"initialDirection,omitempty"`
}

type trackDocument struct {
	AtStart       stateDocument `json:"atStart"`
	AtEnd         stateDocument `json:"atEnd"`
	AtCalorimeter stateDocument `json:"atCalorimeter"`
	EnergyAtDCA   float64       `json:"energyAtDCA"`
	Helix         helixDocument `json:"helix"`
	CanFormPFO    bool          `json:"canFormPFO"`
	ReachesEndcap bool          `json:"reachesEndcap"`
}

type stateDocument struct {
	Position  vec3Document `json:"position"`
	Direction vec3Document `json:"direction"`
}

type helixDocument struct {
	ReferencePoint vec3Document `json:"referencePoint"`
	Momentum       vec3Document `json:"momentum"`
	Charge         float64      `json:"charge"`
	Curvature      float64      `json:"curvature"`
}

func (v vec3Document) toVector3() geometry.Vector3 {
	return geometry.Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

var hitTypeByName = map[string]geometry.HitType{
	"TRACKER": geometry.HitTypeTracker,
	"ECAL":    geometry.HitTypeECAL,
	"HCAL":    geometry.HitTypeHCAL,
	"MUON":    geometry.HitTypeMuon,
	"TPCVIEW": geometry.HitTypeTPCView,
}

var regionByName = map[string]geometry.Region{
	"BARREL": geometry.RegionBarrel,
	"ENDCAP": geometry.RegionEndcap,
}

var cellGeometryByName = map[string]calohit.CellGeometry{
	"RECTANGULAR": calohit.CellRectangular,
	"POINTING":    calohit.CellPointing,
}

// loadedEvent bundles the populated hit, cluster and track managers an
// event document expands into.
type loadedEvent struct {
	HitMgr     *calohit.Manager
	ClusterMgr *cluster.Manager
	TrackMgr   *track.Manager
}

// loadEventFile reads and expands an eventDocument at path into live
// manager-owned state.
func loadEventFile(path string) (*loadedEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}
	var doc eventDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse event JSON: %w", err)
	}
	return expandEvent(&doc)
}

func expandEvent(doc *eventDocument) (*loadedEvent, error) {
	hitMgr := calohit.NewManager()
	idByLocal := make(map[int]pfcore.CaloHitID, len(doc.Hits))

	for _, hd := range doc.Hits {
		h := &calohit.Hit{
			Position:              hd.Position.toVector3(),
			ExpectedDirection:     hd.ExpectedDirection.toVector3(),
			HitType:               hitTypeByName[hd.HitType],
			Region:                regionByName[hd.Region],
			ElectromagneticEnergy: hd.ElectromagneticEnergy,
			HadronicEnergy:        hd.HadronicEnergy,
			MipEquivalentEnergy:   hd.MipEquivalentEnergy,
			PseudoLayer:           hd.PseudoLayer,
			CellGeometry:          cellGeometryByName[hd.CellGeometry],
			CellSize0:             hd.CellSize0,
			CellSize1:             hd.CellSize1,
			MCParticleWeight:      hd.MCParticleWeight,
		}
		id := hitMgr.Add(h)
		idByLocal[hd.LocalID] = id
	}

	cmgr := cluster.NewManager(hitMgr)
	for _, cd := range doc.Clusters {
		c := cmgr.NewCluster()
		if cd.InitialDirection != nil {
			c.InitialDirection = cd.InitialDirection.toVector3()
		}
		for _, localID := range cd.HitIDs {
			id, ok := idByLocal[localID]
			if !ok {
				return nil, fmt.Errorf("cluster references unknown hit id %d", localID)
			}
			h, err := hitMgr.Get(id)
			if err != nil {
				return nil, fmt.Errorf("resolve hit %d: %w", localID, err)
			}
			c.AddHit(id, h.PseudoLayer)
		}
	}

	trackMgr := track.NewManager()
	for _, td := range doc.Tracks {
		t := &track.Track{
			AtStart:       track.State{Position: td.AtStart.Position.toVector3(), Direction: td.AtStart.Direction.toVector3()},
			AtEnd:         track.State{Position: td.AtEnd.Position.toVector3(), Direction: td.AtEnd.Direction.toVector3()},
			AtCalorimeter: track.State{Position: td.AtCalorimeter.Position.toVector3(), Direction: td.AtCalorimeter.Direction.toVector3()},
			EnergyAtDCA:   td.EnergyAtDCA,
			HelixAtCalorimeter: track.Helix{
				ReferencePoint: td.Helix.ReferencePoint.toVector3(),
				Momentum:       td.Helix.Momentum.toVector3(),
				Charge:         td.Helix.Charge,
				Curvature:      td.Helix.Curvature,
			},
			CanFormPFO:    td.CanFormPFO,
			ReachesEndcap: td.ReachesEndcap,
		}
		trackMgr.Add(t)
	}

	return &loadedEvent{HitMgr: hitMgr, ClusterMgr: cmgr, TrackMgr: trackMgr}, nil
}
