package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Project   ProjectConfig   `json:"project" mapstructure:"project"`
	Paths     PathsConfig     `json:"paths" mapstructure:"paths"`
	Scoring   ScoringConfig   `json:"scoring" mapstructure:"scoring"`
	Demand    DemandConfig    `json:"demand_forecasting" mapstructure:"demand_forecasting"`
	Scenarios ScenariosConfig `json:"scenarios" mapstructure:"scenarios"`
	Server    ServerConfig    `json:"server" mapstructure:"server"`
	Log       LogConfig       `json:"log" mapstructure:"log"`
}

// ProjectConfig identifies the planning project.
type ProjectConfig struct {
	Name string `json:"name" mapstructure:"name"`
}

// PathsConfig holds input and output file locations for every stage.
type PathsConfig struct {
	ScoringInput          string `json:"scoring_input" mapstructure:"scoring_input"`
	ScoringOutputGeoJSON  string `json:"scoring_output_geojson" mapstructure:"scoring_output_geojson"`
	ScoringOutputCSV      string `json:"scoring_output_csv" mapstructure:"scoring_output_csv"`
	DemandOutputGeoJSON   string `json:"demand_output_geojson" mapstructure:"demand_output_geojson"`
	DemandOutputCSV       string `json:"demand_output_csv" mapstructure:"demand_output_csv"`
	SummaryStatsJSON      string `json:"summary_stats_json" mapstructure:"summary_stats_json"`
	ScenarioOutputDir     string `json:"scenario_output_dir" mapstructure:"scenario_output_dir"`
	ScenarioComparisonCSV string `json:"scenario_comparison_csv" mapstructure:"scenario_comparison_csv"`
}

// Weights holds the composite score weights. They must be non-negative and
// are applied as-is; callers are responsible for calibration.
type Weights struct {
	Population       float64 `json:"population" mapstructure:"population"`
	AccessGap        float64 `json:"access_gap" mapstructure:"access_gap"`
	EconomicActivity float64 `json:"economic_activity" mapstructure:"economic_activity"`
	SocialNeed       float64 `json:"social_need" mapstructure:"social_need"`
	GridProximity    float64 `json:"grid_proximity" mapstructure:"grid_proximity"`
}

// Thresholds holds the priority category cutoffs in composite score units.
type Thresholds struct {
	HighPriority   float64 `json:"high_priority" mapstructure:"high_priority"`
	MediumPriority float64 `json:"medium_priority" mapstructure:"medium_priority"`
}

// GridExtensionRule is the first recommendation rule checked.
type GridExtensionRule struct {
	MaxDistanceKM      float64 `json:"max_distance_km" mapstructure:"max_distance_km"`
	MinPopulationIndex float64 `json:"min_population_index" mapstructure:"min_population_index"`
}

// MiniGridHybridRule adds a road-density cutoff to the distance/population pair.
type MiniGridHybridRule struct {
	MaxDistanceKM      float64 `json:"max_distance_km" mapstructure:"max_distance_km"`
	MinPopulationIndex float64 `json:"min_population_index" mapstructure:"min_population_index"`
	MinRoadDensity     float64 `json:"min_road_density" mapstructure:"min_road_density"`
}

// StandaloneSolarRule matches remote, sparsely populated clusters.
type StandaloneSolarRule struct {
	MinDistanceKM      float64 `json:"min_distance_km" mapstructure:"min_distance_km"`
	MaxPopulationIndex float64 `json:"max_population_index" mapstructure:"max_population_index"`
}

// RecommendationRules holds the per-solution rule parameters.
type RecommendationRules struct {
	GridExtension   GridExtensionRule   `json:"grid_extension" mapstructure:"grid_extension"`
	MiniGridHybrid  MiniGridHybridRule  `json:"mini_grid_hybrid" mapstructure:"mini_grid_hybrid"`
	StandaloneSolar StandaloneSolarRule `json:"standalone_solar" mapstructure:"standalone_solar"`
}

// ScoringConfig configures the priority scoring stage.
type ScoringConfig struct {
	Weights             Weights             `json:"weights" mapstructure:"weights"`
	Thresholds          Thresholds          `json:"thresholds" mapstructure:"thresholds"`
	FallbackFields      map[string][]string `json:"fallback_fields" mapstructure:"fallback_fields"`
	RecommendationRules RecommendationRules `json:"recommendation_rules" mapstructure:"recommendation_rules"`
	PopulationScale     float64             `json:"population_scale" mapstructure:"population_scale"`
}

// GrowthConfig holds density-tiered annual population growth rates.
type GrowthConfig struct {
	UrbanDensityThreshold     float64 `json:"urban_density_threshold" mapstructure:"urban_density_threshold"`
	PeriUrbanDensityThreshold float64 `json:"peri_urban_density_threshold" mapstructure:"peri_urban_density_threshold"`
	UrbanRate                 float64 `json:"urban_rate" mapstructure:"urban_rate"`
	PeriUrbanRate             float64 `json:"peri_urban_rate" mapstructure:"peri_urban_rate"`
	RuralRate                 float64 `json:"rural_rate" mapstructure:"rural_rate"`
}

// DemandConfig configures the demand forecasting stage.
type DemandConfig struct {
	PopulationGrowth          GrowthConfig `json:"population_growth" mapstructure:"population_growth"`
	BaselineConsumption       float64      `json:"baseline_consumption_kwh_per_person" mapstructure:"baseline_consumption_kwh_per_person"`
	LoadFactor                float64      `json:"load_factor" mapstructure:"load_factor"`
	ElectrificationTargetRate float64      `json:"electrification_target_rate" mapstructure:"electrification_target_rate"`
	ConsumptionGrowthRate     float64      `json:"consumption_growth_rate" mapstructure:"consumption_growth_rate"`
	PopulationScale           float64      `json:"population_scale" mapstructure:"population_scale"`
	BaseYear                  int          `json:"base_year" mapstructure:"base_year"`
	TargetYear                int          `json:"target_year" mapstructure:"target_year"`
}

// Intervention is a single parameterized mutation rule within a scenario.
// Zero-valued parameters fall back to per-type defaults at application time.
type Intervention struct {
	Type       string  `json:"type" mapstructure:"type"`
	Count      int     `json:"count" mapstructure:"count"`
	Target     string  `json:"target" mapstructure:"target"`
	Rate       float64 `json:"rate" mapstructure:"rate"`
	CapacityMW float64 `json:"capacity_mw" mapstructure:"capacity_mw"`
}

// ScenarioDefinition names an ordered list of interventions.
type ScenarioDefinition struct {
	Name          string         `json:"name" mapstructure:"name"`
	Description   string         `json:"description" mapstructure:"description"`
	Interventions []Intervention `json:"interventions" mapstructure:"interventions"`
}

// ScenariosConfig configures the scenario simulation stage.
type ScenariosConfig struct {
	DefaultScenarios []ScenarioDefinition `json:"default_scenarios" mapstructure:"default_scenarios"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `json:"port" mapstructure:"port"`
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// Load reads configuration from the given JSON document and environment.
// An empty path falls back to energymap_config.json in the working directory,
// which is optional; every tunable has a default.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
	} else {
		v.SetConfigName("energymap_config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("ENERGYMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("project.name", "EnergyMap")
	v.SetDefault("paths.scoring_input", "data/clusters.geojson")
	v.SetDefault("paths.scoring_output_geojson", "data/clusters_enriched.geojson")
	v.SetDefault("paths.scoring_output_csv", "data/clusters_enriched_summary.csv")
	v.SetDefault("paths.demand_output_geojson", "data/demand_forecasts.geojson")
	v.SetDefault("paths.demand_output_csv", "data/demand_forecasts.csv")
	v.SetDefault("paths.summary_stats_json", "data/summary_metrics.json")
	v.SetDefault("paths.scenario_output_dir", "data/scenarios")
	v.SetDefault("paths.scenario_comparison_csv", "data/scenarios/scenario_comparison.csv")
	v.SetDefault("scoring.weights.population", 0.25)
	v.SetDefault("scoring.weights.access_gap", 0.25)
	v.SetDefault("scoring.weights.economic_activity", 0.2)
	v.SetDefault("scoring.weights.social_need", 0.15)
	v.SetDefault("scoring.weights.grid_proximity", 0.15)
	v.SetDefault("scoring.thresholds.high_priority", 7.0)
	v.SetDefault("scoring.thresholds.medium_priority", 5.0)
	v.SetDefault("scoring.fallback_fields.population", []string{"norm_pop", "pop_index", "pop_density_norm"})
	v.SetDefault("scoring.fallback_fields.access_gap", []string{"access_gap_index", "norm_dist"})
	v.SetDefault("scoring.fallback_fields.economic", []string{"econ_activity_index", "road_density_norm"})
	v.SetDefault("scoring.fallback_fields.social", []string{"social_need_index"})
	v.SetDefault("scoring.fallback_fields.grid_distance", []string{"dist_to_power_km", "grid_distance_km"})
	v.SetDefault("scoring.recommendation_rules.grid_extension.max_distance_km", 5.0)
	v.SetDefault("scoring.recommendation_rules.grid_extension.min_population_index", 0.6)
	v.SetDefault("scoring.recommendation_rules.mini_grid_hybrid.max_distance_km", 15.0)
	v.SetDefault("scoring.recommendation_rules.mini_grid_hybrid.min_population_index", 0.3)
	v.SetDefault("scoring.recommendation_rules.mini_grid_hybrid.min_road_density", 0.5)
	v.SetDefault("scoring.recommendation_rules.standalone_solar.min_distance_km", 25.0)
	v.SetDefault("scoring.recommendation_rules.standalone_solar.max_population_index", 0.2)
	v.SetDefault("scoring.population_scale", 5000)
	v.SetDefault("demand_forecasting.population_growth.urban_density_threshold", 100.0)
	v.SetDefault("demand_forecasting.population_growth.peri_urban_density_threshold", 50.0)
	v.SetDefault("demand_forecasting.population_growth.urban_rate", 0.035)
	v.SetDefault("demand_forecasting.population_growth.peri_urban_rate", 0.025)
	v.SetDefault("demand_forecasting.population_growth.rural_rate", 0.015)
	v.SetDefault("demand_forecasting.baseline_consumption_kwh_per_person", 500)
	v.SetDefault("demand_forecasting.load_factor", 0.3)
	v.SetDefault("demand_forecasting.electrification_target_rate", 0.8)
	v.SetDefault("demand_forecasting.consumption_growth_rate", 0.025)
	v.SetDefault("demand_forecasting.population_scale", 5000)
	v.SetDefault("demand_forecasting.base_year", 2024)
	v.SetDefault("demand_forecasting.target_year", 2030)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional unless explicitly given)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural preconditions that must abort a run before any
// output is touched.
func (c *Config) Validate() error {
	if c.Paths.ScoringInput == "" {
		return eris.New("config: paths.scoring_input is required")
	}
	if c.Paths.ScoringOutputGeoJSON == "" {
		return eris.New("config: paths.scoring_output_geojson is required")
	}
	if c.Paths.DemandOutputGeoJSON == "" {
		return eris.New("config: paths.demand_output_geojson is required")
	}

	w := c.Scoring.Weights
	for _, wv := range []float64{w.Population, w.AccessGap, w.EconomicActivity, w.SocialNeed, w.GridProximity} {
		if wv < 0 {
			return eris.New("config: scoring weights must be non-negative")
		}
	}

	if c.Scoring.Thresholds.HighPriority <= c.Scoring.Thresholds.MediumPriority {
		return eris.New("config: thresholds.high_priority must exceed thresholds.medium_priority")
	}

	if c.Demand.TargetYear < c.Demand.BaseYear {
		return eris.New("config: demand_forecasting.target_year must not precede base_year")
	}

	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
