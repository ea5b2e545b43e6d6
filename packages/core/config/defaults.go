package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Database:     "memory",
		QueryTimeout: 30000, // 30 seconds
		Format:       "console",
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Database == defaults.Database &&
		c.QueryTimeout == defaults.QueryTimeout &&
		c.Format == defaults.Format &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
