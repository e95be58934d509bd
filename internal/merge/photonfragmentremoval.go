package merge

import "github.com/caloflow/pfreco/internal/cluster"

// RunPhotonFragmentRemoval is spec §4.7.4's photon variant: a single
// cone, daughters optionally restricted to photon-like clusters via
// Config.UseOnlyPhotonLikeDaughters.
func RunPhotonFragmentRemoval(cmgr *cluster.Manager, cfg Config, isPhotonLike func(*cluster.Cluster) bool) error {
	return RunFragmentRemoval(cmgr, KindPhoton, cfg, isPhotonLike)
}

// RunNeutralFragmentRemoval is spec §4.7.4's neutral-hadron variant:
// three cones of increasing tightness, no photon-like restriction.
func RunNeutralFragmentRemoval(cmgr *cluster.Manager, cfg Config) error {
	return RunFragmentRemoval(cmgr, KindNeutral, cfg, nil)
}
