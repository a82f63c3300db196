// Package plant implements the plant life-form stage ladder and milestone
// triggers (§4.8): prokaryote through angiosperm, with trait-gated stage
// transitions and organ unlocks.
package plant

import "evochron/internal/ecology/species"

const (
	StageProkaryote = iota
	StageEukaryote
	StageColonial
	StageBryophyte
	StagePteridophyte
	StageGymnosperm
	StageAngiosperm
)

// Milestone is a stage transition or morphological achievement.
type Milestone struct {
	ID                string
	FromStage         int
	ToStage           int // equal to FromStage for morphological-only milestones
	TraitRequirements map[string]float64
	OrgansUnlocked    []OrganTemplate
	Morphological      bool // true if it does not change life_form_stage
}

// OrganTemplate is a canonical organ unlocked by a milestone, with its
// default parameters and minimum required stage.
type OrganTemplate struct {
	Category     species.OrganCategory
	ReferenceName string
	DefaultParams map[string]float64
	MinStage     int
	Locked       bool // required milestone organ, cannot be renamed by AI content
}

// Ladder is the ordered list of milestones checked each turn, per §4.8.
var Ladder = []Milestone{
	{
		ID: "first_eukaryote", FromStage: StageProkaryote, ToStage: StageEukaryote,
		TraitRequirements: map[string]float64{"cellular_complexity": 3.0},
		OrgansUnlocked: []OrganTemplate{
			{Category: species.OrganPhotosynthetic, ReferenceName: "chloroplast", DefaultParams: map[string]float64{"efficiency": 0.3}, MinStage: StageEukaryote, Locked: true},
		},
	},
	{
		ID: "first_colony", FromStage: StageEukaryote, ToStage: StageColonial,
		TraitRequirements: map[string]float64{"cellular_complexity": 5.0, "size": 2.0},
	},
	{
		ID: "first_land_plant", FromStage: StageColonial, ToStage: StageBryophyte,
		TraitRequirements: map[string]float64{"water_retention": 5.0, "drought_tolerance": 4.0},
		OrgansUnlocked: []OrganTemplate{
			{Category: species.OrganProtection, ReferenceName: "cuticle", DefaultParams: map[string]float64{"thickness": 0.2}, MinStage: StageBryophyte, Locked: true},
			{Category: species.OrganRootSystem, ReferenceName: "rhizoid", DefaultParams: map[string]float64{"depth_cm": 1.0}, MinStage: StageBryophyte, Locked: true},
		},
	},
	{
		ID: "vascular_tissue", FromStage: StageBryophyte, ToStage: StagePteridophyte,
		TraitRequirements: map[string]float64{"size": 5.0, "water_retention": 6.0},
		OrgansUnlocked: []OrganTemplate{
			{Category: species.OrganVascular, ReferenceName: "xylem_phloem", DefaultParams: map[string]float64{"transport_rate": 0.4}, MinStage: StagePteridophyte},
		},
	},
	{
		ID: "seed_bearing", FromStage: StagePteridophyte, ToStage: StageGymnosperm,
		TraitRequirements: map[string]float64{"reproduction_speed": 4.0, "drought_tolerance": 5.0},
		OrgansUnlocked: []OrganTemplate{
			{Category: species.OrganStorage, ReferenceName: "seed", DefaultParams: map[string]float64{"dormancy_months": 6}, MinStage: StageGymnosperm},
		},
	},
	{
		ID: "flowering", FromStage: StageGymnosperm, ToStage: StageAngiosperm,
		TraitRequirements: map[string]float64{"reproduction_speed": 7.0, "size": 6.0},
		OrgansUnlocked: []OrganTemplate{
			{Category: species.OrganReproduction, ReferenceName: "flower", DefaultParams: map[string]float64{"pollinator_attraction": 0.5}, MinStage: StageAngiosperm},
		},
	},
	{
		ID: "first_tree", FromStage: StageAngiosperm, ToStage: StageAngiosperm, Morphological: true,
		TraitRequirements: map[string]float64{"lignification": 7.0},
	},
}

// Eligible reports whether a species' current traits satisfy a milestone's
// requirements and stage precondition.
func Eligible(s *species.Species, m Milestone) bool {
	if m.FromStage != s.LifeFormStage {
		return false
	}
	for trait, min := range m.TraitRequirements {
		if s.AbstractTraits[trait] < min {
			return false
		}
	}
	return true
}

// Trigger applies a milestone to a species: sets the new stage (unless
// morphological-only), re-validates growth form, adds unlocked organs
// respecting their minimum stage, and records the achievement.
func Trigger(s *species.Species, m Milestone, turn int) {
	for _, achieved := range s.AchievedMilestones {
		if achieved == m.ID {
			return
		}
	}

	if !m.Morphological {
		s.LifeFormStage = m.ToStage
		if !species.ValidGrowthForm(s.GrowthForm, s.LifeFormStage) {
			s.GrowthForm = defaultGrowthFormFor(s.LifeFormStage)
		}
	}

	for _, organTemplate := range m.OrgansUnlocked {
		if s.LifeFormStage < organTemplate.MinStage {
			continue
		}
		if _, exists := s.Organs[organTemplate.Category]; exists {
			continue
		}
		if s.Organs == nil {
			s.Organs = map[species.OrganCategory]*species.Organ{}
		}
		s.Organs[organTemplate.Category] = &species.Organ{
			Type:           organTemplate.ReferenceName,
			Parameters:     organTemplate.DefaultParams,
			EvolutionStage: 1,
			IsActive:       true,
			AcquiredTurn:   turn,
		}
	}

	s.AchievedMilestones = append(s.AchievedMilestones, m.ID)
}

func defaultGrowthFormFor(stage int) species.GrowthForm {
	switch {
	case stage <= 2:
		return species.GrowthAquatic
	case stage == 3:
		return species.GrowthMoss
	case stage >= 4 && stage <= 6:
		return species.GrowthHerb
	default:
		return species.GrowthHerb
	}
}

// CheckAutoTrigger scans the ladder in order and triggers the first
// eligible milestone not yet achieved, per §4.8's end-of-turn auto-check.
// Returns the triggered milestone ID, or "" if none fired.
func CheckAutoTrigger(s *species.Species, turn int) string {
	achieved := make(map[string]bool, len(s.AchievedMilestones))
	for _, id := range s.AchievedMilestones {
		achieved[id] = true
	}
	for _, m := range Ladder {
		if achieved[m.ID] {
			continue
		}
		if Eligible(s, m) {
			Trigger(s, m, turn)
			return m.ID
		}
	}
	return ""
}

// TriggerExplicit applies a milestone requested at speciation time via
// milestone_triggered, bypassing the eligibility check (the candidate's
// traits were already validated when the child was constructed).
func TriggerExplicit(s *species.Species, milestoneID string, turn int) bool {
	for _, m := range Ladder {
		if m.ID == milestoneID {
			Trigger(s, m, turn)
			return true
		}
	}
	return false
}

// lockedOrganNames lists reference organ names the AI content layer may
// not rename, per §4.8.
var lockedOrganNames = map[string]bool{
	"chloroplast": true, "cuticle": true, "rhizoid": true,
}

// IsLockedOrganName reports whether a reference organ name is a required
// milestone organ that cannot be renamed by generated content.
func IsLockedOrganName(name string) bool {
	return lockedOrganNames[name]
}
