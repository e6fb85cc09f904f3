package config

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration settings
type Config struct {
	Sink      SinkConfig      `json:"sink"`
	UI        UIConfig        `json:"ui"`
	Simulator SimulatorConfig `json:"simulator"`
}

// SinkConfig holds platform log sink settings
type SinkConfig struct {
	Env         string   `json:"env"`
	OutputPaths []string `json:"outputPaths"`
}

// UIConfig holds diagnostics screen settings
type UIConfig struct {
	ExportDir     string `json:"exportDir"`
	RefreshMillis int    `json:"refreshMillis"`
}

// SimulatorConfig controls the simulated subsystems that feed the recorder
type SimulatorConfig struct {
	Enabled        bool     `json:"enabled"`
	IntervalMillis int      `json:"intervalMillis"`
	Sources        []string `json:"sources"`
}
