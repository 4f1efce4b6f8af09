// Package config loads the robot's YAML configuration files. Every
// document carries a version field and loading rejects versions this
// build does not understand.
package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banyan-robotics/banyan/internal/teleop"
	"github.com/banyan-robotics/banyan/internal/vision"
)

type RobotConfig struct {
	Version int `yaml:"version"`
	Robot   struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"robot"`
	Network struct {
		APIPort  int `yaml:"api_port"`
		MQTTPort int `yaml:"mqtt_port"`
		DBPort   int `yaml:"db_port"`
	} `yaml:"network"`
	Control struct {
		PeriodMillis int `yaml:"period_ms"`
	} `yaml:"control"`
	Paths struct {
		Routine   string `yaml:"routine"`
		Layout    string `yaml:"layout"`
		Locations string `yaml:"locations"`
	} `yaml:"paths"`
}

// APIPort returns the configured API port, defaulting to 8080 if not set.
func (c *RobotConfig) APIPort() int {
	if c.Network.APIPort == 0 {
		return 8080
	}
	return c.Network.APIPort
}

// Period returns the control cycle length, defaulting to 20ms.
func (c *RobotConfig) Period() time.Duration {
	if c.Control.PeriodMillis == 0 {
		return 20 * time.Millisecond
	}
	return time.Duration(c.Control.PeriodMillis) * time.Millisecond
}

type TuningConfig struct {
	Version int `yaml:"version"`
	Aligner struct {
		LinearKP  float64 `yaml:"linear_kp"`
		LinearKI  float64 `yaml:"linear_ki"`
		LinearKD  float64 `yaml:"linear_kd"`
		AngularKP float64 `yaml:"angular_kp"`
		AngularKI float64 `yaml:"angular_ki"`
		AngularKD float64 `yaml:"angular_kd"`

		MaxVelocity            float64 `yaml:"max_velocity"`
		MaxAcceleration        float64 `yaml:"max_acceleration"`
		MaxAngularVelocity     float64 `yaml:"max_angular_velocity"`
		MaxAngularAcceleration float64 `yaml:"max_angular_acceleration"`

		PositionTolerance        float64 `yaml:"position_tolerance"`
		RotationToleranceDegrees float64 `yaml:"rotation_tolerance_deg"`
	} `yaml:"aligner"`
	Teleop struct {
		LossTimeoutMillis   int     `yaml:"loss_timeout_ms"`
		SearchKP            float64 `yaml:"search_kp"`
		SearchRate          float64 `yaml:"search_rate"`
		AimKP               float64 `yaml:"aim_kp"`
		AimToleranceDegrees float64 `yaml:"aim_tolerance_deg"`
		MaxAngularVelocity  float64 `yaml:"max_angular_velocity"`
	} `yaml:"teleop"`
}

// AlignerConfig converts the tuning document into an aligner config,
// falling back to the stock tuning for any zero-valued field.
func (c *TuningConfig) AlignerConfig() vision.AlignerConfig {
	cfg := vision.DefaultAlignerConfig()
	a := c.Aligner

	setIfNonzero(&cfg.LinearKP, a.LinearKP)
	setIfNonzero(&cfg.LinearKI, a.LinearKI)
	setIfNonzero(&cfg.LinearKD, a.LinearKD)
	setIfNonzero(&cfg.AngularKP, a.AngularKP)
	setIfNonzero(&cfg.AngularKI, a.AngularKI)
	setIfNonzero(&cfg.AngularKD, a.AngularKD)
	setIfNonzero(&cfg.MaxVelocity, a.MaxVelocity)
	setIfNonzero(&cfg.MaxAcceleration, a.MaxAcceleration)
	setIfNonzero(&cfg.MaxAngularVelocity, a.MaxAngularVelocity)
	setIfNonzero(&cfg.MaxAngularAcceleration, a.MaxAngularAcceleration)
	setIfNonzero(&cfg.PositionTolerance, a.PositionTolerance)
	if a.RotationToleranceDegrees != 0 {
		cfg.RotationTolerance = a.RotationToleranceDegrees * math.Pi / 180.0
	}
	return cfg
}

// TeleopConfig converts the tuning document into a teleop supervisor
// config, falling back to the stock tuning for zero-valued fields.
func (c *TuningConfig) TeleopConfig() teleop.Config {
	cfg := teleop.DefaultConfig()
	t := c.Teleop

	if t.LossTimeoutMillis != 0 {
		cfg.LossTimeout = time.Duration(t.LossTimeoutMillis) * time.Millisecond
	}
	setIfNonzero(&cfg.SearchKP, t.SearchKP)
	setIfNonzero(&cfg.SearchRate, t.SearchRate)
	setIfNonzero(&cfg.AimKP, t.AimKP)
	if t.AimToleranceDegrees != 0 {
		cfg.AimTolerance = t.AimToleranceDegrees * math.Pi / 180.0
	}
	setIfNonzero(&cfg.MaxAngularVelocity, t.MaxAngularVelocity)
	return cfg
}

func setIfNonzero(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func LoadRobotConfig(path string) (*RobotConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RobotConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported robot.yaml version: %d", cfg.Version)
	}

	return &cfg, nil
}

func LoadTuningConfig(path string) (*TuningConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg TuningConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported tuning.yaml version: %d", cfg.Version)
	}

	return &cfg, nil
}
