package config

// Get* methods return the configured value or a documented default when
// unset. Defaults are chosen to match the reference algorithm's
// published working points; they are not tuned for any one detector
// and are expected to be overridden per-run via LoadPipelineConfig.

func (c *PipelineConfig) GetHadronicEnergyResolution() float64 {
	return orDefault(c.HadronicEnergyResolution, 0.6)
}

func (c *PipelineConfig) GetCaloHitMaxSeparation() float64 {
	return orDefault(c.CaloHitMaxSeparation, 250.0)
}

func (c *PipelineConfig) GetDensityWeightNLayers() int {
	return orDefaultInt(c.DensityWeightNLayers, 3)
}

func (c *PipelineConfig) GetDensityWeightContribution() float64 {
	return orDefault(c.DensityWeightContribution, 0.1)
}

func (c *PipelineConfig) GetDensityWeightPower() float64 {
	return orDefault(c.DensityWeightPower, 2.0)
}

func (c *PipelineConfig) GetIsolationCutDistanceFine() float64 {
	return orDefault(c.IsolationCutDistanceFine, 2.5)
}

func (c *PipelineConfig) GetIsolationCutDistanceCoarse() float64 {
	return orDefault(c.IsolationCutDistanceCoarse, 10.0)
}

func (c *PipelineConfig) GetIsolationNLayers() int {
	return orDefaultInt(c.IsolationNLayers, 2)
}

func (c *PipelineConfig) GetIsolationMaxNearbyHits() int {
	return orDefaultInt(c.IsolationMaxNearbyHits, 2)
}

func (c *PipelineConfig) GetMipNCellsForNearbyHit() float64 {
	return orDefault(c.MipNCellsForNearbyHit, 2.5)
}

func (c *PipelineConfig) GetMipMaxNearbyHits() int {
	return orDefaultInt(c.MipMaxNearbyHits, 1)
}

func (c *PipelineConfig) GetConeCosineHalfAngle1() float64 {
	return orDefault(c.ConeCosineHalfAngle1, 0.9)
}

func (c *PipelineConfig) GetConeCosineHalfAngle2() float64 {
	return orDefault(c.ConeCosineHalfAngle2, 0.95)
}

func (c *PipelineConfig) GetConeCosineHalfAngle3() float64 {
	return orDefault(c.ConeCosineHalfAngle3, 0.985)
}

func (c *PipelineConfig) GetCloseHitDistance1() float64 {
	return orDefault(c.CloseHitDistance1, 50.0)
}

func (c *PipelineConfig) GetCloseHitDistance2() float64 {
	return orDefault(c.CloseHitDistance2, 100.0)
}

func (c *PipelineConfig) GetContactDistanceThreshold() float64 {
	return orDefault(c.ContactDistanceThreshold, 1.5)
}

func (c *PipelineConfig) GetMinContactLayers() int {
	return orDefaultInt(c.MinContactLayers, 3)
}

func (c *PipelineConfig) GetMinCosOpeningAngle() float64 {
	return orDefault(c.MinCosOpeningAngle, 0.0)
}

func (c *PipelineConfig) GetMaxTrackClusterChi() float64 {
	return orDefault(c.MaxTrackClusterChi, 2.5)
}

func (c *PipelineConfig) GetMaxTrackClusterDChi2() float64 {
	return orDefault(c.MaxTrackClusterDChi2, 1.0)
}

func (c *PipelineConfig) GetNGenericDistanceLayers() int {
	return orDefaultInt(c.NGenericDistanceLayers, 4)
}

func (c *PipelineConfig) GetNAdjacentLayersToExamine() int {
	return orDefaultInt(c.NAdjacentLayersToExamine, 2)
}

func (c *PipelineConfig) GetMaxParallelDistance() float64 {
	return orDefault(c.MaxParallelDistance, 2500.0)
}

func (c *PipelineConfig) GetMaxClusterHelixDistance() float64 {
	return orDefault(c.MaxClusterHelixDistance, 150.0)
}

func (c *PipelineConfig) GetMinCloseHitFraction() float64 {
	return orDefault(c.MinCloseHitFraction, 0.2)
}

func (c *PipelineConfig) GetMinContactFraction() float64 {
	return orDefault(c.MinContactFraction, 0.3)
}

func (c *PipelineConfig) GetWeightContact() float64 {
	return orDefault(c.WeightContact, 1.0)
}

func (c *PipelineConfig) GetWeightCone() float64 {
	return orDefault(c.WeightCone, 1.0)
}

func (c *PipelineConfig) GetWeightDistance() float64 {
	return orDefault(c.WeightDistance, 1.0)
}

func (c *PipelineConfig) GetMinEvidence() float64 {
	return orDefault(c.MinEvidence, 1.0)
}

func (c *PipelineConfig) GetNMaxPasses() int {
	return orDefaultInt(c.NMaxPasses, 4)
}

func (c *PipelineConfig) GetDistanceEvidence1() float64 {
	return orDefault(c.DistanceEvidence1, 100.0)
}

func (c *PipelineConfig) GetDistanceEvidence1d() float64 {
	return orDefault(c.DistanceEvidence1d, 1.0)
}

func (c *PipelineConfig) GetUseOnlyPhotonLikeDaughters() bool {
	return orDefaultBool(c.UseOnlyPhotonLikeDaughters, false)
}

func (c *PipelineConfig) GetContactEvidenceNLayers1() int {
	return orDefaultInt(c.ContactEvidenceNLayers1, 10)
}

func (c *PipelineConfig) GetContactEvidenceNLayers2() int {
	return orDefaultInt(c.ContactEvidenceNLayers2, 4)
}

func (c *PipelineConfig) GetContactEvidenceNLayers3() int {
	return orDefaultInt(c.ContactEvidenceNLayers3, 1)
}

func (c *PipelineConfig) GetContactEvidence1() float64 {
	return orDefault(c.ContactEvidence1, 2.0)
}

func (c *PipelineConfig) GetContactEvidence2() float64 {
	return orDefault(c.ContactEvidence2, 1.0)
}

func (c *PipelineConfig) GetContactEvidence3() float64 {
	return orDefault(c.ContactEvidence3, 0.5)
}

func (c *PipelineConfig) GetConeEvidenceFraction1() float64 {
	return orDefault(c.ConeEvidenceFraction1, 0.5)
}

func (c *PipelineConfig) GetConeEvidenceFineGranularityMultiplier() float64 {
	return orDefault(c.ConeEvidenceFineGranularityMultiplier, 0.5)
}

func (c *PipelineConfig) GetDistanceEvidenceCloseFraction1Multiplier() float64 {
	return orDefault(c.DistanceEvidenceCloseFraction1Multiplier, 1.0)
}

func (c *PipelineConfig) GetDistanceEvidenceCloseFraction2Multiplier() float64 {
	return orDefault(c.DistanceEvidenceCloseFraction2Multiplier, 2.0)
}

func (c *PipelineConfig) GetMaxRecombinationDistance() float64 {
	return orDefault(c.MaxRecombinationDistance, 50.0)
}

func (c *PipelineConfig) GetMinHitsInCluster() int {
	return orDefaultInt(c.MinHitsInCluster, 5)
}

func (c *PipelineConfig) GetChiToAttemptReclustering() float64 {
	return orDefault(c.ChiToAttemptReclustering, 3.0)
}

func (c *PipelineConfig) GetMinChi2Improvement() float64 {
	return orDefault(c.MinChi2Improvement, 1.0)
}

func (c *PipelineConfig) GetChi2ForAutomaticClusterSelection() float64 {
	return orDefault(c.Chi2ForAutomaticClusterSelection, 1.0)
}

func (c *PipelineConfig) GetMinForcedChi2Improvement() float64 {
	return orDefault(c.MinForcedChi2Improvement, 0.5)
}

func (c *PipelineConfig) GetMaxForcedChi2() float64 {
	return orDefault(c.MaxForcedChi2, 16.0)
}

func (c *PipelineConfig) GetChiToAttemptMerging() float64 {
	return orDefault(c.ChiToAttemptMerging, 2.0)
}

func (c *PipelineConfig) GetMinConeFractionSingle() float64 {
	return orDefault(c.MinConeFractionSingle, 0.25)
}

func (c *PipelineConfig) GetMaxLayerSeparationMultiple() int {
	return orDefaultInt(c.MaxLayerSeparationMultiple, 4)
}

func (c *PipelineConfig) GetMinPeakEnergy() float64 {
	return orDefault(c.MinPeakEnergy, 0.2)
}

func (c *PipelineConfig) GetMinPeakRMS() float64 {
	return orDefault(c.MinPeakRMS, 5.0)
}

func (c *PipelineConfig) GetMinPeakHitCount() int {
	return orDefaultInt(c.MinPeakHitCount, 4)
}

func (c *PipelineConfig) GetPhotonPDFFile() string {
	if c.PhotonPDFFile == nil {
		return ""
	}
	return *c.PhotonPDFFile
}

func (c *PipelineConfig) GetMinFineGranularityEMEnergy() float64 {
	return orDefault(c.MinFineGranularityEMEnergy, 0.1)
}

func (c *PipelineConfig) GetPidCutDefault() float64 {
	return orDefault(c.PidCutDefault, 0.4)
}

func (c *PipelineConfig) GetMaxTrackClusterChiRecovery() float64 {
	return orDefault(c.MaxTrackClusterChiRecovery, 3.0)
}

func (c *PipelineConfig) GetMaxTrackClusterDistanceBarrel() float64 {
	return orDefault(c.MaxTrackClusterDistanceBarrel, 100.0)
}

func (c *PipelineConfig) GetMaxTrackClusterDistanceEndcap() float64 {
	return orDefault(c.MaxTrackClusterDistanceEndcap, 50.0)
}

func orDefault(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func orDefaultInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func orDefaultBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
