// Package tracing installs a Jaeger tracer for the gateway call spans.
package tracing

import (
	"io"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"golang.org/x/xerrors"
)

// Install creates a Jaeger tracer configured from the JAEGER_* environment
// variables and registers it as the global tracer. Callers must close the
// returned io.Closer before exiting so that buffered spans are flushed.
//
// Unless JAEGER_SAMPLER_TYPE is set, every span is sampled.
func Install(serviceName string) (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, xerrors.Errorf("tracing: %w", err)
	}

	if cfg.Sampler == nil || cfg.Sampler.Type == "" {
		cfg.Sampler = &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		}
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}

	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, xerrors.Errorf("tracing: %w", err)
	}

	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}
