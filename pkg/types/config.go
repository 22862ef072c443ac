package types

// StoreConfig holds settings for the study store.
type StoreConfig struct {
	// DataDir is the directory holding the SQLite study database.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// ScoringConfig holds settings for the criteria registry.
type ScoringConfig struct {
	// Weighting selects the comparability weighting scheme: standard or flat.
	Weighting string `json:"weighting" yaml:"weighting" mapstructure:"weighting"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Mode is development (console) or production (JSON).
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`
}

// ReportConfig holds settings for reports, exports and charts.
type ReportConfig struct {
	// OutputDir is where exports and charts are written (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// ChartWidth is the PNG width in pixels (default 1200).
	ChartWidth int `json:"chart_width" yaml:"chart_width" mapstructure:"chart_width"`

	// FontPath is an optional TrueType font for chart labels. The built-in
	// bitmap face is used when empty.
	FontPath string `json:"font_path,omitempty" yaml:"font_path,omitempty" mapstructure:"font_path"`
}

// Config groups all nos-assess settings.
type Config struct {
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:",squash"`
	Scoring ScoringConfig `json:"scoring" yaml:"scoring" mapstructure:",squash"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Report  ReportConfig  `json:"report" yaml:"report" mapstructure:"report"`
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() Config {
	return Config{
		Store:   StoreConfig{DataDir: "data"},
		Scoring: ScoringConfig{Weighting: "standard"},
		Log:     LogConfig{Mode: "development"},
		Report: ReportConfig{
			OutputDir:  "output",
			ChartWidth: 1200,
		},
	}
}
