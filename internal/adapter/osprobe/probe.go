package osprobe

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/showcase-storage/internal/domain"
	"github.com/vertextoedge/showcase-storage/internal/port"
)

// DefaultTimeout bounds every external command
const DefaultTimeout = 5 * time.Second

// Config contains options shared by the command-backed probe and lister
type Config struct {
	// GOOS selects the command set; defaults to runtime.GOOS
	GOOS string

	// Timeout bounds each external command
	Timeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := Config{GOOS: runtime.GOOS, Timeout: DefaultTimeout}
	if c != nil {
		if c.GOOS != "" {
			out.GOOS = c.GOOS
		}
		if c.Timeout > 0 {
			out.Timeout = c.Timeout
		}
	}
	return out
}

// CommandProbe shells out to df (POSIX) or wmic (Windows)
type CommandProbe struct {
	config Config
	runner Runner
	logger *zap.Logger
}

var _ port.DiskProbe = (*CommandProbe)(nil)

// NewCommandProbe creates a disk probe backed by OS utilities
func NewCommandProbe(cfg *Config, runner Runner, logger *zap.Logger) *CommandProbe {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandProbe{
		config: cfg.withDefaults(),
		runner: runner,
		logger: logger,
	}
}

// Probe returns usage for the filesystem backing path, or nil when the
// command fails or its output cannot be parsed.
func (p *CommandProbe) Probe(ctx context.Context, path string) (*domain.DiskUsage, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	var (
		usage *domain.DiskUsage
		err   error
	)
	if p.config.GOOS == "windows" {
		usage, err = p.probeWindows(ctx, path)
	} else {
		usage, err = p.probePOSIX(ctx, path)
	}

	if err != nil {
		p.logger.Debug("disk probe unavailable", zap.String("path", path), zap.Error(err))
		return nil, nil
	}
	return usage, nil
}

func (p *CommandProbe) probePOSIX(ctx context.Context, path string) (*domain.DiskUsage, error) {
	out, err := p.runner.Run(ctx, "df", "-k", "-P", path)
	if err != nil {
		return nil, err
	}
	return parseDF(out)
}

func (p *CommandProbe) probeWindows(ctx context.Context, path string) (*domain.DiskUsage, error) {
	letter := driveLetter(path)
	if letter == "" {
		return nil, fmt.Errorf("no drive letter in %q", path)
	}

	out, err := p.runner.Run(ctx, "wmic", "logicaldisk",
		"where", fmt.Sprintf("DeviceID='%s:'", letter),
		"get", "FreeSpace,Size", "/format:value")
	if err != nil {
		return nil, err
	}
	return parseWMIDisk(out, letter+`:\`)
}
