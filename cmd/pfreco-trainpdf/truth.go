package main

import (
	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/pfcore"
)

// photonPDGCode is the truth-particle key addEMHit-style MC weight maps
// use for a photon's Monte Carlo PDG code, following the convention
// spec.md's glossary attributes to CaloHit.MCParticleWeight: truth
// studies key it by MC particle identifier.
const photonPDGCode = "22"

// isTruePhoton labels a peak's hit list as true signal in training mode:
// the hits' energy-weighted MC particle contributions are summed per
// particle id, and the peak is a true photon if the photon PDG code
// carries the largest share.
func isTruePhoton(hits []pfcore.CaloHitID, hitMgr *calohit.Manager) bool {
	contributions := make(map[string]float64)
	for _, id := range hits {
		h, err := hitMgr.Get(id)
		if err != nil {
			continue
		}
		totalEnergy := h.ElectromagneticEnergy + h.HadronicEnergy
		for particleID, weight := range h.MCParticleWeight {
			contributions[particleID] += weight * totalEnergy
		}
	}

	best := ""
	bestShare := 0.0
	for particleID, share := range contributions {
		if share > bestShare {
			bestShare = share
			best = particleID
		}
	}
	return best == photonPDGCode
}
