package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/firesim/internal/experiment"
	"github.com/san-kum/firesim/internal/playback"
)

const (
	DefaultStreamFile   = "res/simulation_stream.ndjson"
	DefaultControlFile  = "res/sim_control.json"
	DefaultDataDir      = "runs"
	DefaultLogFile      = "firesim.log"
	DefaultLogLevel     = "info"
	DefaultPollInterval = 50 * time.Millisecond
	DefaultTickRate     = 30
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	StreamFile    string            `yaml:"stream_file"`
	ControlFile   string            `yaml:"control_file"`
	DataDir       string            `yaml:"data_dir"`
	LogFile       string            `yaml:"log_file"`
	LogLevel      string            `yaml:"log_level"`
	Command       string            `yaml:"command"`
	Script        string            `yaml:"script"`
	Workdir       string            `yaml:"workdir"`
	PollInterval  time.Duration     `yaml:"poll_interval"`
	ShutdownGrace time.Duration     `yaml:"shutdown_grace"`
	Playback      PlaybackConfig    `yaml:"playback"`
	Run           experiment.Params `yaml:"run"`
}

type PlaybackConfig struct {
	// Speed is seconds per frame.
	Speed     float64 `yaml:"speed"`
	EndPolicy string  `yaml:"end_policy"`
	// TickRate is UI ticks per second.
	TickRate int `yaml:"tick_rate"`
}

func DefaultConfig() *Config {
	return &Config{
		StreamFile:    DefaultStreamFile,
		ControlFile:   DefaultControlFile,
		DataDir:       DefaultDataDir,
		LogFile:       DefaultLogFile,
		LogLevel:      DefaultLogLevel,
		Command:       experiment.DefaultCommand,
		Script:        experiment.DefaultScript,
		PollInterval:  DefaultPollInterval,
		ShutdownGrace: experiment.DefaultShutdownGrace,
		Playback: PlaybackConfig{
			Speed:     playback.DefaultSpeed,
			EndPolicy: playback.EndPause.String(),
			TickRate:  DefaultTickRate,
		},
		Run: experiment.DefaultParams(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault reads path when it exists and falls back to the defaults
// when it does not.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.StreamFile == "" {
		return fmt.Errorf("%w: stream_file is required", ErrInvalid)
	}
	if c.ControlFile == "" {
		return fmt.Errorf("%w: control_file is required", ErrInvalid)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalid)
	}
	if c.Playback.TickRate <= 0 {
		return fmt.Errorf("%w: playback.tick_rate must be positive", ErrInvalid)
	}
	if _, err := playback.ParseEndPolicy(c.Playback.EndPolicy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Run.Validate(); err != nil {
		return fmt.Errorf("%w: run: %v", ErrInvalid, err)
	}
	return nil
}

// EndPolicy is the parsed playback.end_policy. Validate has checked it.
func (c *Config) EndPolicy() playback.EndPolicy {
	p, _ := playback.ParseEndPolicy(c.Playback.EndPolicy)
	return p
}

// TickInterval is the UI tick period.
func (c *Config) TickInterval() time.Duration {
	if c.Playback.TickRate <= 0 {
		return time.Second / DefaultTickRate
	}
	return time.Second / time.Duration(c.Playback.TickRate)
}

// Launcher builds the process launcher described by the config.
func (c *Config) Launcher(logger *slog.Logger) *experiment.Launcher {
	return &experiment.Launcher{
		Command: c.Command,
		Script:  c.Script,
		Workdir: c.Workdir,
		Grace:   c.ShutdownGrace,
		Logger:  logger,
	}
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// NewLogger returns a text logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenLog opens the configured log file for appending.
func (c *Config) OpenLog() (*os.File, error) {
	return os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
