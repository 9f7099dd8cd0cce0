package config

// Config represents the structure of the .fsar.yaml configuration file.
// Durations are Go duration strings ("300ms", "2s"). Pointer fields
// distinguish "unset" from an explicit zero value.
type Config struct {
	Root           string    `yaml:"root"`
	IncludeHidden  *bool     `yaml:"include_hidden"`
	MaxDepth       *int      `yaml:"max_depth"`
	Ignore         []string  `yaml:"ignore"`
	Backend        string    `yaml:"backend"`
	PollInterval   string    `yaml:"poll_interval"`
	DebounceWindow string    `yaml:"debounce_window"`
	QueueSize      *int      `yaml:"queue_size"`
	Overflow       string    `yaml:"overflow"`
	RenderTick     string    `yaml:"render_tick"`
	Output         string    `yaml:"output"`
	Decay          *DecayDTO `yaml:"decay"`
}

// DecayDTO holds the activity decay thresholds of the config file.
type DecayDTO struct {
	CreatedBright  string `yaml:"created_bright"`
	CreatedFade    string `yaml:"created_fade"`
	ModifiedBright string `yaml:"modified_bright"`
	ModifiedFade   string `yaml:"modified_fade"`
	DeletedHold    string `yaml:"deleted_hold"`
}
