// Package config loads PipelineConfig, the JSON-overridable set of
// per-operator thresholds spec'd in spec.md §6. Every configuration key
// named there survives here verbatim as a JSON field name, so existing
// config files stay meaningful; fields are pointers so a partial JSON
// document only overrides what it sets, following
// internal/config.TuningConfig's pattern in the teacher repository.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caloflow/pfreco/internal/security"
)

// DefaultPipelineConfigPath is the canonical location for the pipeline's
// tunable-parameter defaults file.
const DefaultPipelineConfigPath = "config/pfreco.defaults.json"

// PipelineConfig is the root configuration for one pipeline run. Fields
// are grouped loosely by the component that reads them, but all live in
// one flat JSON document, matching the XML-like flat parameter block
// spec.md §6 describes.
type PipelineConfig struct {
	// Hadronic energy resolution constant (sigma_E), used by every
	// TrackClusterCompatibility.Chi call.
	HadronicEnergyResolution *float64 `json:"HadronicEnergyResolution,omitempty"`

	// CaloHitProperties
	CaloHitMaxSeparation       *float64 `json:"CaloHitMaxSeparation,omitempty"`
	DensityWeightNLayers       *int     `json:"DensityWeightNLayers,omitempty"`
	DensityWeightContribution  *float64 `json:"DensityWeightContribution,omitempty"`
	DensityWeightPower         *float64 `json:"DensityWeightPower,omitempty"`
	IsolationCutDistanceFine   *float64 `json:"IsolationCutDistanceFine,omitempty"`
	IsolationCutDistanceCoarse *float64 `json:"IsolationCutDistanceCoarse,omitempty"`
	IsolationNLayers           *int     `json:"IsolationNLayers,omitempty"`
	IsolationMaxNearbyHits     *int     `json:"IsolationMaxNearbyHits,omitempty"`
	MipNCellsForNearbyHit      *float64 `json:"MipNCellsForNearbyHit,omitempty"`
	MipMaxNearbyHits           *int     `json:"MipMaxNearbyHits,omitempty"`

	// ClusterContact / FragmentGeometry
	ConeCosineHalfAngle1     *float64 `json:"ConeCosineHalfAngle1,omitempty"`
	ConeCosineHalfAngle2     *float64 `json:"ConeCosineHalfAngle2,omitempty"`
	ConeCosineHalfAngle3     *float64 `json:"ConeCosineHalfAngle3,omitempty"`
	CloseHitDistance1        *float64 `json:"CloseHitDistance1,omitempty"`
	CloseHitDistance2        *float64 `json:"CloseHitDistance2,omitempty"`
	ContactDistanceThreshold *float64 `json:"ContactDistanceThreshold,omitempty"`
	MinContactLayers         *int     `json:"MinContactLayers,omitempty"`
	MinCosOpeningAngle       *float64 `json:"MinCosOpeningAngle,omitempty"`

	// ProximityBasedMerging
	MaxTrackClusterChi        *float64 `json:"MaxTrackClusterChi,omitempty"`
	MaxTrackClusterDChi2      *float64 `json:"MaxTrackClusterDChi2,omitempty"`
	NGenericDistanceLayers    *int     `json:"NGenericDistanceLayers,omitempty"`
	NAdjacentLayersToExamine  *int     `json:"NAdjacentLayersToExamine,omitempty"`
	MaxParallelDistance       *float64 `json:"MaxParallelDistance,omitempty"`
	MaxClusterHelixDistance   *float64 `json:"MaxClusterHelixDistance,omitempty"`
	MinCloseHitFraction       *float64 `json:"MinCloseHitFraction,omitempty"`
	MinContactFraction        *float64 `json:"MinContactFraction,omitempty"`

	// PhotonFragmentRemoval / NeutralFragmentRemoval
	WeightContact     *float64 `json:"WeightContact,omitempty"`
	WeightCone        *float64 `json:"WeightCone,omitempty"`
	WeightDistance    *float64 `json:"WeightDistance,omitempty"`
	MinEvidence       *float64 `json:"MinEvidence,omitempty"`
	NMaxPasses        *int     `json:"NMaxPasses,omitempty"`
	DistanceEvidence1  *float64 `json:"DistanceEvidence1,omitempty"`
	DistanceEvidence1d *float64 `json:"DistanceEvidence1d,omitempty"`
	UseOnlyPhotonLikeDaughters *bool `json:"UseOnlyPhotonLikeDaughters,omitempty"`
	ContactEvidenceNLayers1 *int     `json:"ContactEvidenceNLayers1,omitempty"`
	ContactEvidenceNLayers2 *int     `json:"ContactEvidenceNLayers2,omitempty"`
	ContactEvidenceNLayers3 *int     `json:"ContactEvidenceNLayers3,omitempty"`
	ContactEvidence1        *float64 `json:"ContactEvidence1,omitempty"`
	ContactEvidence2        *float64 `json:"ContactEvidence2,omitempty"`
	ContactEvidence3        *float64 `json:"ContactEvidence3,omitempty"`
	ConeEvidenceFraction1   *float64 `json:"ConeEvidenceFraction1,omitempty"`
	ConeEvidenceFineGranularityMultiplier      *float64 `json:"ConeEvidenceFineGranularityMultiplier,omitempty"`
	DistanceEvidenceCloseFraction1Multiplier    *float64 `json:"DistanceEvidenceCloseFraction1Multiplier,omitempty"`
	DistanceEvidenceCloseFraction2Multiplier    *float64 `json:"DistanceEvidenceCloseFraction2Multiplier,omitempty"`

	// IsolatedHitMerging
	MaxRecombinationDistance *float64 `json:"MaxRecombinationDistance,omitempty"`
	MinHitsInCluster         *int     `json:"MinHitsInCluster,omitempty"`

	// Reclustering
	ChiToAttemptReclustering       *float64 `json:"ChiToAttemptReclustering,omitempty"`
	MinChi2Improvement             *float64 `json:"MinChi2Improvement,omitempty"`
	Chi2ForAutomaticClusterSelection *float64 `json:"Chi2ForAutomaticClusterSelection,omitempty"`
	MinForcedChi2Improvement       *float64 `json:"MinForcedChi2Improvement,omitempty"`
	MaxForcedChi2                  *float64 `json:"MaxForcedChi2,omitempty"`
	ChiToAttemptMerging             *float64 `json:"ChiToAttemptMerging,omitempty"`
	MinConeFractionSingle           *float64 `json:"MinConeFractionSingle,omitempty"`
	MaxLayerSeparationMultiple      *int     `json:"MaxLayerSeparationMultiple,omitempty"`

	// PhotonReconstruction
	MinPeakEnergy       *float64 `json:"MinPeakEnergy,omitempty"`
	MinPeakRMS          *float64 `json:"MinPeakRMS,omitempty"`
	MinPeakHitCount     *int     `json:"MinPeakHitCount,omitempty"`
	PhotonPDFFile       *string  `json:"PhotonPDFFile,omitempty"`
	MinFineGranularityEMEnergy *float64 `json:"MinFineGranularityEMEnergy,omitempty"`
	PidCutDefault       *float64 `json:"PidCutDefault,omitempty"`

	// TrackRecovery
	MaxTrackClusterChiRecovery *float64 `json:"MaxTrackClusterChiRecovery,omitempty"`
	MaxTrackClusterDistanceBarrel *float64 `json:"MaxTrackClusterDistanceBarrel,omitempty"`
	MaxTrackClusterDistanceEndcap *float64 `json:"MaxTrackClusterDistanceEndcap,omitempty"`
}

// EmptyPipelineConfig returns a PipelineConfig with every field nil; all
// Get* accessors fall back to their documented defaults.
func EmptyPipelineConfig() *PipelineConfig { return &PipelineConfig{} }

// LoadPipelineConfig loads a PipelineConfig from a JSON file. The path
// is validated to prevent escaping baseDir, must have a .json extension,
// and the file must be under 1MB, matching TuningConfig's load
// discipline in the teacher repository.
func LoadPipelineConfig(path, baseDir string) (*PipelineConfig, error) {
	if baseDir != "" {
		if err := security.ValidatePathWithinDirectory(path, baseDir); err != nil {
			return nil, fmt.Errorf("config path rejected: %w", err)
		}
	}
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configured values are range-sane. Only invariants
// cheap to check independent of any other field are checked here;
// cross-field invariants live with the operator that enforces them.
func (c *PipelineConfig) Validate() error {
	if c.HadronicEnergyResolution != nil && *c.HadronicEnergyResolution <= 0 {
		return fmt.Errorf("HadronicEnergyResolution must be positive, got %f", *c.HadronicEnergyResolution)
	}
	if c.DistanceEvidence1d != nil && *c.DistanceEvidence1d < 1e-9 {
		return fmt.Errorf("DistanceEvidence1d must be above machine epsilon, got %f", *c.DistanceEvidence1d)
	}
	if c.MinContactLayers != nil && *c.MinContactLayers < 0 {
		return fmt.Errorf("MinContactLayers must be non-negative, got %d", *c.MinContactLayers)
	}
	return nil
}
