// Package simconfig loads the rule tables the engine consumes by lookup
// rather than hard-coded cases: habitat adjacency, trophic trait budgets,
// milestone definitions, organ parameter ranges, and tunables for the
// mortality, speciation, gene-flow and adaptation stages.
package simconfig

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable and rule table the pipeline stages read.
type Config struct {
	Mortality    MortalityConfig    `yaml:"mortality"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Speciation   SpeciationConfig   `yaml:"speciation"`
	Adaptation   AdaptationConfig   `yaml:"adaptation"`
	GeneFlow     GeneFlowConfig     `yaml:"gene_flow"`
	Hybrid       HybridConfig       `yaml:"hybridization"`
	Territory    TerritoryConfig    `yaml:"territory"`
	TraitBudget  TraitBudgetConfig  `yaml:"trait_budget"`
	Habitat      HabitatConfig      `yaml:"habitat"`
	AI           AIConfig           `yaml:"ai_content"`
	Era          EraConfig          `yaml:"era"`
}

type MortalityConfig struct {
	MinDeathRate          float64 `yaml:"min_death_rate"`
	MaxDeathRate          float64 `yaml:"max_death_rate"`
	StrongCompetition     float64 `yaml:"strong_competition_similarity"`
	WeakCompetition       float64 `yaml:"weak_competition_similarity"`
	StrongCompetitionCoef float64 `yaml:"strong_competition_factor"`
	WeakCompetitionCoef   float64 `yaml:"weak_competition_factor"`
	DiseaseDensityFloor   float64 `yaml:"disease_density_floor"`
	RefugeThreshold       float64 `yaml:"refuge_threshold"`
	AlleeMortalityWeight  float64 `yaml:"allee_mortality_weight"`
	EcologicalEfficiency  float64 `yaml:"ecological_efficiency"`
	FallbackCapacityShare float64 `yaml:"fallback_capacity_share"`
	TempChangePenaltyAbs  float64 `yaml:"temp_change_penalty_threshold"`
	SeaLevelPenaltyAbs    float64 `yaml:"sea_level_penalty_threshold"`
	ProducerCapacityKg    float64 `yaml:"producer_capacity_kg_per_resource_unit"`
}

type ReproductionConfig struct {
	IntrinsicRateScale  float64 `yaml:"intrinsic_rate_scale"`
	GenerationScaleDiv  float64 `yaml:"generation_scale_factor"`
	SurvivalModMin      float64 `yaml:"survival_modifier_min"`
	SaturationThreshold float64 `yaml:"saturation_threshold"`
	EffectiveRateMin    float64 `yaml:"effective_rate_min"`
	EffectiveRateMax    float64 `yaml:"effective_rate_max"`
	GrowthStepCap       float64 `yaml:"growth_step_cap"`
	DeclineStepCap      float64 `yaml:"decline_step_cap"`
	AbsoluteCapKg       float64 `yaml:"absolute_cap_kg"`
}

type SpeciationConfig struct {
	BaseProbability         float64 `yaml:"base_probability"`
	SoftCapPopulation       float64 `yaml:"soft_cap_population"`
	CooldownTurns           int     `yaml:"cooldown_turns"`
	EvolutionPotentialMin   float64 `yaml:"evolution_potential_min"`
	AccumulatedPressureMin  float64 `yaml:"accumulated_pressure_min"`
	AccumulatedPressureStep float64 `yaml:"accumulated_pressure_step"`
	AccumulatedPressureCap  float64 `yaml:"accumulated_pressure_cap"`
	PressureLow             float64 `yaml:"pressure_low"`
	PressureHigh            float64 `yaml:"pressure_high"`
	ResourcePressureMin     float64 `yaml:"resource_pressure_min"`
	DeathRateLow            float64 `yaml:"death_rate_low"`
	DeathRateHigh           float64 `yaml:"death_rate_high"`
	IsolationGradient       float64 `yaml:"isolation_gradient"`
	NicheOverlapCoevolution float64 `yaml:"niche_overlap_coevolution"`
	JitterDownProbability   float64 `yaml:"jitter_down_probability"`
	DensityPenaltySpecies1  int     `yaml:"density_penalty_species_soft"`
	DensityPenaltySpecies2  int     `yaml:"density_penalty_species_hard"`
	SiblingPenaltySoft      int     `yaml:"sibling_penalty_soft"`
	SiblingPenaltyHard      int     `yaml:"sibling_penalty_hard"`
}

type AdaptationConfig struct {
	GradualEvolutionRate  float64 `yaml:"gradual_evolution_rate"`
	GenerationScaleDiv    float64 `yaml:"generation_scale_factor"`
	PlantTradeoffChance   float64 `yaml:"plant_tradeoff_chance"`
	OrganDriftMin         float64 `yaml:"organ_drift_min"`
	OrganDriftMax         float64 `yaml:"organ_drift_max"`
	OrganDriftProbability float64 `yaml:"organ_drift_probability"`
	StageProgressBase     float64 `yaml:"stage_progress_base"`
	StageProgressMax      float64 `yaml:"stage_progress_max"`
	StagnationChance      float64 `yaml:"stagnation_chance"`
	BreakthroughChance    float64 `yaml:"breakthrough_chance"`
	RegressionCheckTurns  int     `yaml:"regression_check_turns"`
	DormantActivateChance float64 `yaml:"vision_deactivate_chance"`
	ParasiteDeactivate    float64 `yaml:"parasite_deactivate_chance"`
	DescriptionDriftMin   float64 `yaml:"description_drift_threshold"`
	DescriptionMinTurns   int     `yaml:"description_min_turns_since_refresh"`
}

type GeneFlowConfig struct {
	DistanceThreshold float64 `yaml:"distance_threshold"`
	OverlapThreshold  float64 `yaml:"overlap_threshold"`
	FlowRateBase      float64 `yaml:"flow_rate_base"`
	TimeDivergenceDiv float64 `yaml:"time_divergence_turns"`
}

type HybridConfig struct {
	MaxDistance        float64 `yaml:"max_distance"`
	FertilityFullRange float64 `yaml:"fertility_full_fertility_distance"`
	MinPopulationKg    float64 `yaml:"min_population_kg"`
	TopN               int     `yaml:"top_n"`
}

type TerritoryConfig struct {
	SuitabilityGain    float64 `yaml:"suitability_gain_cap"`
	PopulationGain     float64 `yaml:"population_gain_cap"`
	PresenceBonus      float64 `yaml:"presence_bonus"`
	RefugeBonus        float64 `yaml:"refuge_bonus"`
	CompetitionLossCap float64 `yaml:"competition_loss_cap"`
	NoPopulationDecay  float64 `yaml:"no_population_decay"`
	EstablishedMin     float64 `yaml:"established_min"`
	PresentMin         float64 `yaml:"present_min"`
	MarginalMin        float64 `yaml:"marginal_min"`
}

type TraitBudgetConfig struct {
	BaseLimit        float64            `yaml:"base_limit"`
	SpecializedLimit float64            `yaml:"specialized_limit"`
	TrophicMultiplier float64           `yaml:"trophic_multiplier"`
	EraCaps          map[string]float64 `yaml:"era_caps"`
}

type HabitatConfig struct {
	Adjacency map[string][]string `yaml:"adjacency"`
}

// EraConfig is §4.1's year-per-turn table: how many simulated years one
// turn advances, keyed by geological era. Eras earlier in Earth's history
// advance faster per turn since less fine-grained change is tracked.
type EraConfig struct {
	DefaultYearsPerTurn float64            `yaml:"default_years_per_turn"`
	YearsPerTurn        map[string]float64 `yaml:"years_per_turn"`
}

// YearsForEra looks up the configured year-per-turn span for an era,
// falling back to DefaultYearsPerTurn for eras absent from the table
// (matching TraitBudgetConfig.EraCaps' own fallback-on-miss behavior).
func (e EraConfig) YearsForEra(era string) float64 {
	if years, ok := e.YearsPerTurn[era]; ok {
		return years
	}
	return e.DefaultYearsPerTurn
}

type AIConfig struct {
	TimeoutSeconds       int `yaml:"timeout_seconds"`
	MaxConsecutiveErrors int `yaml:"max_consecutive_errors"`
	StaggerIntervalMs    int `yaml:"stagger_interval_ms"`
	ConcurrencyCap       int `yaml:"concurrency_cap"`
}

var global *Config

// Init loads configuration, merging an optional override file over the
// embedded defaults. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error — used at process startup only,
// matching the taxonomy's rule that configuration errors are fatal at
// startup and never at runtime.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("simconfig: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("simconfig: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}
