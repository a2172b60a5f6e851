package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	JobPath           string // hcl job definition
	InstallationsPath string // hcl installation registry
	Workspace         string
	ModuleRoot        string

	ToolsDir    string
	AutoInstall bool

	ConsoleLogPath string
	LogFormat      string
	LogLevel       string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.JobPath == "" {
		return nil, errors.New("JobPath is a required configuration field and cannot be empty")
	}
	if cfg.Workspace == "" {
		return nil, errors.New("Workspace is a required configuration field and cannot be empty")
	}
	if cfg.AutoInstall && cfg.ToolsDir == "" {
		return nil, errors.New("AutoInstall requires ToolsDir to be set")
	}

	return &cfg, nil
}
