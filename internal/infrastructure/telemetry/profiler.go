package telemetry

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig points continuous profiling at a Pyroscope server. An empty
// ServerAddress leaves profiling off.
type ProfilerConfig struct {
	ServerAddress     string
	BasicAuthUser     string
	BasicAuthPassword string
	// MutexProfileFraction above zero adds mutex and block profiles
	MutexProfileFraction int
}

func (c ProfilerConfig) enabled() bool {
	return c.ServerAddress != ""
}

func (c ProfilerConfig) profileTypes() []pyroscope.ProfileType {
	types := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocObjects,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseObjects,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}
	if c.MutexProfileFraction > 0 {
		types = append(types,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		)
	}
	return types
}

// startProfiler runs independently of the OTLP pipelines. When traces are
// also on, spans carry their id as a pprof label.
func (p *Providers) startProfiler(cfg Config) error {
	pc := cfg.Profiler
	if !pc.enabled() {
		return nil
	}
	if cfg.ServiceName == "" {
		return errors.New("profiler: service name is required")
	}
	if pc.MutexProfileFraction > 0 {
		runtime.SetMutexProfileFraction(pc.MutexProfileFraction)
		runtime.SetBlockProfileRate(pc.MutexProfileFraction)
	}

	tags := map[string]string{}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}
	if cfg.ServiceVersion != "" {
		tags["version"] = cfg.ServiceVersion
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.ServiceName,
		ServerAddress:     pc.ServerAddress,
		BasicAuthUser:     pc.BasicAuthUser,
		BasicAuthPassword: pc.BasicAuthPassword,
		Logger:            p.logger.Named("pyroscope").Sugar(),
		Tags:              tags,
		ProfileTypes:      pc.profileTypes(),
	})
	if err != nil {
		return fmt.Errorf("profiler: %w", err)
	}
	p.profiler = profiler

	p.logger.Info("Continuous profiling started",
		zap.String("server_address", pc.ServerAddress),
		zap.String("application_name", cfg.ServiceName),
		zap.Bool("mutex_profiles", pc.MutexProfileFraction > 0),
	)
	return nil
}

// Profiling reports whether profiles are being pushed
func (p *Providers) Profiling() bool {
	return p.profiler != nil
}

func (p *Providers) stopProfiler() error {
	if p.profiler == nil {
		return nil
	}
	err := p.profiler.Stop()
	p.profiler = nil
	if err != nil {
		p.logger.Error("Profiler stop failed", zap.Error(err))
		return fmt.Errorf("profiler: %w", err)
	}
	return nil
}
