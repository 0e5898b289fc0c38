package hostcfg

import (
	"testing"
	"time"
)

func TestParseEnvFile(t *testing.T) {
	cfg := &SessionConfig{
		Transport:   "serial",
		Port:        "/dev/ttyUSB0",
		BaudRate:    9600,
		ReadTimeout: time.Second,
		MaxRetries:  5,
	}
	content := `
# session parameters
GARMIN_TRANSPORT=usb
GARMIN_PORT = /dev/ttyS3
GARMIN_BAUD=38400
GARMIN_TIMEOUT_MS=2500
GARMIN_RETRIES=3
IGNORED_KEY=whatever
malformed line
`
	parseEnvFile(content, cfg)

	if cfg.Transport != "usb" {
		t.Errorf("Transport = %q, want usb", cfg.Transport)
	}
	if cfg.Port != "/dev/ttyS3" {
		t.Errorf("Port = %q, want /dev/ttyS3", cfg.Port)
	}
	if cfg.BaudRate != 38400 {
		t.Errorf("BaudRate = %d, want 38400", cfg.BaudRate)
	}
	if cfg.ReadTimeout != 2500*time.Millisecond {
		t.Errorf("ReadTimeout = %v, want 2.5s", cfg.ReadTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
}

func TestParseEnvFileBadNumbers(t *testing.T) {
	cfg := &SessionConfig{BaudRate: 9600, MaxRetries: 5}
	parseEnvFile("GARMIN_BAUD=fast\nGARMIN_RETRIES=-", cfg)
	if cfg.BaudRate != 9600 {
		t.Errorf("BaudRate = %d, want unchanged 9600", cfg.BaudRate)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want unchanged 5", cfg.MaxRetries)
	}
}
