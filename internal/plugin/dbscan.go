package plugin

import (
	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
)

// spatialIndex3D grid-buckets 3D positions for radius queries, lifted
// from the 2D (x,y) cell-bucketing grid used for foreground point
// clustering, generalised to (x,y,z) since calo hit proximity is not
// planar.
type spatialIndex3D struct {
	cellSize float64
	grid     map[[3]int64][]int
}

func newSpatialIndex3D(cellSize float64) *spatialIndex3D {
	return &spatialIndex3D{cellSize: cellSize, grid: make(map[[3]int64][]int)}
}

func (si *spatialIndex3D) cellOf(p geometry.Vector3) [3]int64 {
	return [3]int64{
		int64(floorDiv(p.X, si.cellSize)),
		int64(floorDiv(p.Y, si.cellSize)),
		int64(floorDiv(p.Z, si.cellSize)),
	}
}

func floorDiv(v, cellSize float64) float64 {
	q := v / cellSize
	if q < 0 {
		return q - 1
	}
	return q
}

func (si *spatialIndex3D) build(points []geometry.Vector3) {
	for i, p := range points {
		cell := si.cellOf(p)
		si.grid[cell] = append(si.grid[cell], i)
	}
}

func (si *spatialIndex3D) regionQuery(points []geometry.Vector3, idx int, eps float64) []int {
	p := points[idx]
	base := si.cellOf(p)
	eps2 := eps * eps
	var neighbors []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				cell := [3]int64{base[0] + dx, base[1] + dy, base[2] + dz}
				for _, candidateIdx := range si.grid[cell] {
					d := points[candidateIdx].Sub(p)
					if d.X*d.X+d.Y*d.Y+d.Z*d.Z <= eps2 {
						neighbors = append(neighbors, candidateIdx)
					}
				}
			}
		}
	}
	return neighbors
}

// DBSCANClusteringPlugin groups available hits by 3D density-reachability,
// the reference clustering algorithm reclustering operators pick by name
// via "dbscan".
type DBSCANClusteringPlugin struct {
	Eps    float64
	MinPts int
}

func (p *DBSCANClusteringPlugin) Name() string { return "dbscan" }

// Cluster groups available hits into new clusters via DBSCAN over 3D
// hit position, generalised from the 2D (x,y) foreground-tracking DBSCAN.
// Noise points (density-unreachable) are left available, not dropped.
func (p *DBSCANClusteringPlugin) Cluster(available []pfcore.CaloHitID, hitMgr *calohit.Manager, cmgr *cluster.Manager) ([]*cluster.Cluster, error) {
	if len(available) == 0 {
		return nil, nil
	}

	positions := make([]geometry.Vector3, len(available))
	for i, id := range available {
		h, err := hitMgr.Get(id)
		if err != nil {
			return nil, err
		}
		positions[i] = h.Position
	}

	n := len(positions)
	labels := make([]int, n) // 0 = unvisited, -1 = noise, >0 = cluster index (1-based)
	clusterCount := 0

	idx := newSpatialIndex3D(p.Eps)
	idx.build(positions)

	for i := 0; i < n; i++ {
		if labels[i] != 0 {
			continue
		}
		neighbors := idx.regionQuery(positions, i, p.Eps)
		if len(neighbors) < p.MinPts {
			labels[i] = -1
			continue
		}
		clusterCount++
		labels[i] = clusterCount
		seeds := append([]int{}, neighbors...)
		for len(seeds) > 0 {
			j := seeds[0]
			seeds = seeds[1:]
			if labels[j] == -1 {
				labels[j] = clusterCount
			}
			if labels[j] != 0 {
				continue
			}
			labels[j] = clusterCount
			jNeighbors := idx.regionQuery(positions, j, p.Eps)
			if len(jNeighbors) >= p.MinPts {
				seeds = append(seeds, jNeighbors...)
			}
		}
	}

	byCluster := make(map[int]*cluster.Cluster, clusterCount)
	var out []*cluster.Cluster
	for i, label := range labels {
		if label <= 0 {
			continue
		}
		c, ok := byCluster[label]
		if !ok {
			c = cmgr.NewCluster()
			byCluster[label] = c
			out = append(out, c)
		}
		id := available[i]
		h, err := hitMgr.Get(id)
		if err != nil {
			continue
		}
		c.AddHit(id, h.PseudoLayer)
		hitMgr.SetAvailable(id, false)
	}
	return out, nil
}
