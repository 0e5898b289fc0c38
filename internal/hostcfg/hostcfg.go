// internal/hostcfg/hostcfg.go
//
// Session configuration: an optional .env file at the project root,
// overridden by environment variables. Only connection parameters live
// here; everything protocol-level is negotiated with the device.
package hostcfg

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// SessionConfig carries the host-side connection parameters for one
// device session.
type SessionConfig struct {
	// Transport is "serial" or "usb".
	Transport string
	// Port is the serial device path, e.g. /dev/ttyUSB0. Unused for USB.
	Port string
	// BaudRate is the initial serial baud rate.
	BaudRate int
	// ReadTimeout bounds each physical read.
	ReadTimeout time.Duration
	// MaxRetries is the per-operation retry budget.
	MaxRetries int
}

var (
	sessionConfig *SessionConfig
	configLoaded  bool
)

// LoadSessionConfig reads the .env file at the project root (if present)
// and then applies environment variable overrides. The result is cached
// for the life of the process.
func LoadSessionConfig() (*SessionConfig, error) {
	if sessionConfig != nil && configLoaded {
		return sessionConfig, nil
	}

	cfg := &SessionConfig{
		Transport:   "serial",
		Port:        "/dev/ttyUSB0",
		BaudRate:    9600,
		ReadTimeout: time.Second,
		MaxRetries:  5,
	}

	projectRoot := findProjectRoot()
	envPath := filepath.Join(projectRoot, ".env")

	data, err := os.ReadFile(envPath)
	if err == nil {
		parseEnvFile(string(data), cfg)
	}

	// Override with environment variables if set
	if transport := os.Getenv("GARMIN_TRANSPORT"); transport != "" {
		cfg.Transport = transport
	}
	if port := os.Getenv("GARMIN_PORT"); port != "" {
		cfg.Port = port
	}
	if baud := os.Getenv("GARMIN_BAUD"); baud != "" {
		if v, err := strconv.Atoi(baud); err == nil {
			cfg.BaudRate = v
		}
	}
	if timeout := os.Getenv("GARMIN_TIMEOUT_MS"); timeout != "" {
		if v, err := strconv.Atoi(timeout); err == nil {
			cfg.ReadTimeout = time.Duration(v) * time.Millisecond
		}
	}
	if retries := os.Getenv("GARMIN_RETRIES"); retries != "" {
		if v, err := strconv.Atoi(retries); err == nil {
			cfg.MaxRetries = v
		}
	}

	sessionConfig = cfg
	configLoaded = true
	return cfg, nil
}

func parseEnvFile(content string, cfg *SessionConfig) {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "GARMIN_TRANSPORT":
			cfg.Transport = value
		case "GARMIN_PORT":
			cfg.Port = value
		case "GARMIN_BAUD":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.BaudRate = v
			}
		case "GARMIN_TIMEOUT_MS":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.ReadTimeout = time.Duration(v) * time.Millisecond
			}
		case "GARMIN_RETRIES":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.MaxRetries = v
			}
		}
	}
}

func findProjectRoot() string {
	cwd, _ := os.Getwd()
	// First check CWD for .env file
	if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
		return cwd
	}
	// Then walk up looking for go.mod
	for {
		if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err == nil {
			return cwd
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return cwd
		}
		cwd = parent
	}
}
