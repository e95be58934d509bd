package cluster

import (
	"github.com/caloflow/pfreco/internal/fit"
	"github.com/caloflow/pfreco/internal/geometry"
)

// FitStart fits the first nLayers occupied pseudo-layers of the cluster.
func (c *Cluster) FitStart(nLayers int) fit.Result {
	layers := c.Hits.Layers()
	if len(layers) > nLayers {
		layers = layers[:nLayers]
	}
	return fit.FitAll(c.positionsForLayers(layers))
}

// FitEnd fits the last nLayers occupied pseudo-layers of the cluster.
func (c *Cluster) FitEnd(nLayers int) fit.Result {
	layers := c.Hits.Layers()
	if len(layers) > nLayers {
		layers = layers[len(layers)-nLayers:]
	}
	return fit.FitAll(c.positionsForLayers(layers))
}

// FitLayers fits the occupied pseudo-layers within [layerMin, layerMax].
func (c *Cluster) FitLayers(layerMin, layerMax int) fit.Result {
	return fit.FitAll(c.PositionsInLayerRange(layerMin, layerMax))
}

func (c *Cluster) positionsForLayers(layers []int) []geometry.Vector3 {
	var out []geometry.Vector3
	for _, layer := range layers {
		for _, id := range c.Hits.HitsInLayer(layer) {
			h, err := c.hitMgr.Get(id)
			if err == nil {
				out = append(out, h.Position)
			}
		}
	}
	return out
}
