// SPDX-License-Identifier: MIT

package veilfs

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// LogLevel controls which engine log messages reach the log channel.
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarning
	LogError
)

var logLevelNames = map[LogLevel]string{
	LogDebug:   "debug",
	LogInfo:    "info",
	LogWarning: "warning",
	LogError:   "error",
}

// String returns the level name.
func (l LogLevel) String() string {
	if name, found := logLevelNames[l]; found {
		return name
	}

	return "invalid"
}

// MarshalText implements [encoding.TextMarshaler].
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (l *LogLevel) UnmarshalText(text []byte) error {
	for level, name := range logLevelNames {
		if name == string(text) {
			*l = level
			return nil
		}
	}

	return &ConfigError{Field: "log_level", Reason: "unknown level " + string(text)}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LogDebug:
		return logrus.DebugLevel
	case LogInfo:
		return logrus.InfoLevel
	case LogWarning:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

// CrashDumpType selects the kind of crash dumps the engine writes.
type CrashDumpType int

const (
	CrashDumpNil CrashDumpType = iota
	CrashDumpMini
	CrashDumpData
	CrashDumpFull
)

var crashDumpNames = map[CrashDumpType]string{
	CrashDumpNil:  "nil",
	CrashDumpMini: "mini",
	CrashDumpData: "data",
	CrashDumpFull: "full",
}

// String returns the dump type name.
func (t CrashDumpType) String() string {
	if name, found := crashDumpNames[t]; found {
		return name
	}

	return "invalid"
}

// MarshalText implements [encoding.TextMarshaler].
func (t CrashDumpType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *CrashDumpType) UnmarshalText(text []byte) error {
	for dumpType, name := range crashDumpNames {
		if name == string(text) {
			*t = dumpType
			return nil
		}
	}

	return &ConfigError{Field: "crash_dump_type", Reason: "unknown type " + string(text)}
}

// Config carries the parameters of one VFS instance. It is built once and
// passed by value into create and connect, duplicating a config is plain
// assignment.
type Config struct {
	// InstanceName identifies the VFS instance. Required.
	InstanceName string `toml:"instance_name"`

	// DebugMode raises the effective log level to debug.
	DebugMode bool `toml:"debug_mode"`

	// LogLevel of the instance's log channel.
	LogLevel LogLevel `toml:"log_level"`

	// CrashDumpType selects crash dump contents.
	CrashDumpType CrashDumpType `toml:"crash_dump_type"`

	// CrashDumpPath is the directory crash dumps are written to. Empty
	// means the current working directory.
	CrashDumpPath string `toml:"crash_dump_path"`

	// ProcessDelayMs stalls every hooked process for the given number of
	// milliseconds before it starts executing its own code.
	ProcessDelayMs int64 `toml:"process_delay_ms"`
}

// Validate checks the configuration for values the engine cannot accept.
func (c *Config) Validate() error {
	if c.InstanceName == "" {
		return &ConfigError{Field: "instance_name", Reason: "must not be empty"}
	}

	if _, found := logLevelNames[c.LogLevel]; !found {
		return &ConfigError{Field: "log_level", Reason: fmt.Sprintf("invalid value %d", c.LogLevel)}
	}

	if _, found := crashDumpNames[c.CrashDumpType]; !found {
		return &ConfigError{Field: "crash_dump_type", Reason: fmt.Sprintf("invalid value %d", c.CrashDumpType)}
	}

	if c.ProcessDelayMs < 0 {
		return &ConfigError{Field: "process_delay_ms", Reason: "must not be negative"}
	}

	return nil
}

// LoadConfig reads a [Config] from the TOML file at path.
func LoadConfig(path string) (Config, error) {
	var config Config

	if _, err := toml.DecodeFile(path, &config); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}
