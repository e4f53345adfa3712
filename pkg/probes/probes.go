// Package probes implements file based readiness and liveness probes for
// workers that expose no HTTP listener (exec probes checking a file's presence or age).
package probes

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bindassticks/storefront/pkg/config"
)

type Probes struct {
	cfg    config.ProbesConfig
	logger *slog.Logger
}

func New(cfg config.ProbesConfig, logger *slog.Logger) *Probes {
	return &Probes{cfg: cfg, logger: logger.With("component", "probes")}
}

// MarkReady creates the readiness file.
func (p *Probes) MarkReady() error {
	if err := touch(p.cfg.ReadinessFileName); err != nil {
		return fmt.Errorf("failed to write readiness file: %w", err)
	}
	return nil
}

// RunLiveness touches the liveness file every interval until ctx is done,
// then removes both probe files.
func (p *Probes) RunLiveness(ctx context.Context) error {
	defer p.cleanup()
	if err := touch(p.cfg.LivenessFileName); err != nil {
		return fmt.Errorf("failed to write liveness file: %w", err)
	}
	ticker := time.NewTicker(p.cfg.LivenessInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := touch(p.cfg.LivenessFileName); err != nil {
				p.logger.Error("failed to refresh liveness file", "error", err)
			}
		}
	}
}

func (p *Probes) cleanup() {
	for _, name := range []string{p.cfg.ReadinessFileName, p.cfg.LivenessFileName} {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("failed to remove probe file", "file", name, "error", err)
		}
	}
}

func touch(name string) error {
	now := time.Now()
	if err := os.Chtimes(name, now, now); err == nil {
		return nil
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	return f.Close()
}
