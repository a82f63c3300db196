// Package species implements the Species entity and the invariants the
// rest of the pipeline must preserve across every stage commit.
package species

import (
	"github.com/google/uuid"

	"evochron/internal/ecology/tile"
)

// TaxonomicRank distinguishes full species from subspecies and hybrids.
type TaxonomicRank string

const (
	RankSpecies    TaxonomicRank = "species"
	RankSubspecies TaxonomicRank = "subspecies"
	RankHybrid     TaxonomicRank = "hybrid"
)

// Status is alive or extinct; extinct species are retained (not deleted)
// for the fossil/phylogeny record.
type Status string

const (
	StatusAlive   Status = "alive"
	StatusExtinct Status = "extinct"
)

// DietType enumerates trophic strategies.
type DietType string

const (
	DietAutotroph   DietType = "autotroph"
	DietHerbivore   DietType = "herbivore"
	DietCarnivore   DietType = "carnivore"
	DietOmnivore    DietType = "omnivore"
	DietDetritivore DietType = "detritivore"
)

// GrowthForm applies to plants only, valid for specific life-form-stage
// ranges (see Species.ValidGrowthForm).
type GrowthForm string

const (
	GrowthAquatic GrowthForm = "aquatic"
	GrowthMoss    GrowthForm = "moss"
	GrowthHerb    GrowthForm = "herb"
	GrowthShrub   GrowthForm = "shrub"
	GrowthTree    GrowthForm = "tree"
)

// OrganCategory names the functional category an organ belongs to.
type OrganCategory string

const (
	OrganLocomotion  OrganCategory = "locomotion"
	OrganSensory     OrganCategory = "sensory"
	OrganMetabolic   OrganCategory = "metabolic"
	OrganDigestive   OrganCategory = "digestive"
	OrganDefense     OrganCategory = "defense"
	OrganReproduction OrganCategory = "reproduction"
	// Plant-only categories.
	OrganPhotosynthetic OrganCategory = "photosynthetic"
	OrganRootSystem     OrganCategory = "root_system"
	OrganStem           OrganCategory = "stem"
	OrganProtection     OrganCategory = "protection"
	OrganVascular       OrganCategory = "vascular"
	OrganStorage        OrganCategory = "storage"
)

// EvolutionEvent is one entry in an organ's evolution_history.
type EvolutionEvent struct {
	Turn        int    `json:"turn"`
	Description string `json:"description"`
	FromStage   int    `json:"from_stage"`
	ToStage     int    `json:"to_stage"`
}

// Organ is one evolving organ system on a species.
type Organ struct {
	Type             string             `json:"type"`
	Parameters       map[string]float64 `json:"parameters"`
	EvolutionStage   int                `json:"evolution_stage"`   // 0..4
	EvolutionProgress float64           `json:"evolution_progress"` // [0,1] progress toward next stage
	IsActive         bool               `json:"is_active"`
	AcquiredTurn     int                `json:"acquired_turn"`
	EvolutionHistory []EvolutionEvent   `json:"evolution_history"`
}

// DormantGene is un-expressed potential stored on a species: a trait or
// organ variant with an activation threshold and provenance.
type DormantGene struct {
	Name              string   `json:"name"`
	Potential         float64  `json:"potential"`
	ActivationThreshold float64 `json:"activation_threshold"`
	RequiredPressures []string `json:"required_pressures"`
	ExposureCount     int      `json:"exposure_count"`
	Dominant          bool     `json:"dominant"`
	Inherited         bool     `json:"inherited"` // false = de-novo mutation
}

// Species is the primary evolving entity. See package doc and spec §3 for
// the full invariant list; Validate below enforces the checkable subset.
type Species struct {
	ID uuid.UUID `json:"id"`

	LineageCode    string        `json:"lineage_code"`
	ParentCode     string        `json:"parent_code"`
	GenusCode      string        `json:"genus_code"`
	TaxonomicRank  TaxonomicRank `json:"taxonomic_rank"`
	Status         Status        `json:"status"`
	CreatedTurn    int           `json:"created_turn"`
	IsBackground   bool          `json:"is_background"`

	TrophicLevel float64         `json:"trophic_level"` // [1.0, 5.5]
	DietType     DietType        `json:"diet_type"`
	HabitatType  tile.HabitatType `json:"habitat_type"`

	MorphologyStats map[string]float64 `json:"morphology_stats"`
	AbstractTraits  map[string]float64 `json:"abstract_traits"` // each [0,15]
	HiddenTraits    map[string]float64 `json:"hidden_traits"`   // each [0,1]

	Organs       map[OrganCategory]*Organ `json:"organs"`
	Capabilities map[string]bool          `json:"capabilities"`

	DormantTraits map[string]*DormantGene `json:"dormant_traits"`
	DormantOrgans map[string]*DormantGene `json:"dormant_organs"`

	PreySpecies     []string           `json:"prey_species"`     // lineage codes
	PreyPreferences map[string]float64 `json:"prey_preferences"` // lineage -> weight, sums ~1

	LifeFormStage      int        `json:"life_form_stage"`      // plants, 0..6
	GrowthForm         GrowthForm `json:"growth_form"`           // plants only
	AchievedMilestones []string   `json:"achieved_milestones"`

	AccumulatedAdaptationScore float64 `json:"accumulated_adaptation_score"`
	LastDescriptionUpdateTurn int     `json:"last_description_update_turn"`
	AccumulatedSpeciationPressure float64 `json:"accumulated_speciation_pressure"`
	LastSpeciationTurn         int   `json:"last_speciation_turn"`

	HybridParentCodes []string `json:"hybrid_parent_codes,omitempty"`
	HybridFertility   float64  `json:"hybrid_fertility,omitempty"`

	LatinName  string `json:"latin_name"`
	CommonName string `json:"common_name"`
	Description string `json:"description"`
}

// IsPlant reports whether this species follows the plant life-form ladder:
// trophic_level < 2.0 or it has an active photosynthetic organ.
func (s *Species) IsPlant() bool {
	if s.TrophicLevel < 2.0 {
		return true
	}
	if o, ok := s.Organs[OrganPhotosynthetic]; ok && o.IsActive {
		return true
	}
	return false
}

// EcologicalLayer derives the competition layer from trophic level (§4.9).
func (s *Species) EcologicalLayer() int {
	switch {
	case s.TrophicLevel < 1.5:
		return 1
	case s.TrophicLevel < 2.5:
		return 2
	case s.TrophicLevel < 3.5:
		return 3
	case s.TrophicLevel < 4.5:
		return 4
	default:
		return 5
	}
}

// ValidGrowthForm reports whether the given growth form is legal for the
// given life-form stage (§3 invariant).
func ValidGrowthForm(form GrowthForm, stage int) bool {
	switch form {
	case GrowthAquatic:
		return stage >= 0 && stage <= 2
	case GrowthMoss:
		return stage == 3
	case GrowthHerb:
		return stage >= 4 && stage <= 6
	case GrowthShrub, GrowthTree:
		return stage >= 5 && stage <= 6
	default:
		return false
	}
}
