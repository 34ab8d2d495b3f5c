package config

import "sort"

func preset(mutate func(c *Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"DroneHoverBulletEnvWithAdversary-v0": {
		"hover": preset(func(c *Config) {}),
		"stress": preset(func(c *Config) {
			c.Disturbance = DisturbanceConfig{Kind: "uniform", Bound: []float64{5.3e-3, 5.3e-3, 1.43e-4}}
			c.Episodes = 8
		}),
		"calm": preset(func(c *Config) {
			c.Disturbance = DisturbanceConfig{Kind: "uniform", Bound: []float64{2e-4, 2e-4, 2e-5}}
		}),
		"push": preset(func(c *Config) {
			c.Policy = "hover"
			c.Disturbance = DisturbanceConfig{Kind: "constant", Constant: []float64{1e-3, 0, 0}}
		}),
	},
	"DroneHoverBulletEnv-v0": {
		"hover": preset(func(c *Config) {
			c.Env = "DroneHoverBulletEnv-v0"
		}),
		"noisy": preset(func(c *Config) {
			c.Env = "DroneHoverBulletEnv-v0"
			c.InitNoise = 0.05
			c.Episodes = 8
		}),
		"random": preset(func(c *Config) {
			c.Env = "DroneHoverBulletEnv-v0"
			c.Policy = "random"
			c.NormalizeActions = true
		}),
	},
}

func GetPreset(env, name string) *Config {
	envPresets, ok := Presets[env]
	if !ok {
		return nil
	}
	cfg, ok := envPresets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(env string) []string {
	envPresets, ok := Presets[env]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(envPresets))
	for name := range envPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
