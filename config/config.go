// Package config loads the annosync settings from a TOML file.
package config

import (
	"bytes"
	"io/ioutil"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/xerrors"
)

// Config holds every setting that can be specified in a config file.
type Config struct {
	Stores       Stores       `toml:"stores"`
	Pipeline     Pipeline     `toml:"pipeline"`
	Retry        Retry        `toml:"retry"`
	FulltextSync FulltextSync `toml:"fulltext_sync"`

	// The port for exposing metrics; 0 disables the metrics server.
	MetricsPort int `toml:"metrics_port"`

	// Tracing enables the Jaeger tracer.
	Tracing bool `toml:"tracing"`
}

// Stores holds the URIs of the three stores.
type Stores struct {
	AnnopageURI string `toml:"annopage_uri"`
	MetadataURI string `toml:"metadata_uri"`
	FulltextURI string `toml:"fulltext_uri"`

	// The Solr commitWithin interval, as a duration string.
	CommitWithin string `toml:"commit_within"`
}

// Pipeline holds the concurrency bounds of the sync jobs.
type Pipeline struct {
	ChunkSize      int `toml:"chunk_size"`
	ThreadPoolSize int `toml:"thread_pool_size"`
	ThrottleLimit  int `toml:"throttle_limit"`
	SkipLimit      int `toml:"skip_limit"`
}

// Retry holds the retry policy for gateway calls.
type Retry struct {
	Attempts int `toml:"attempts"`

	// The wait between attempts, as a duration string.
	Delay string `toml:"delay"`

	// The maximum number of gateway calls per second; 0 means unlimited.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// FulltextSync holds the settings of the fulltext-sync job.
type FulltextSync struct {
	// An RFC3339 start time override. If empty, the job starts from the
	// most recent full-text modification time in the index.
	Since string `toml:"since"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Stores: Stores{
			AnnopageURI:  "in-memory://",
			MetadataURI:  "in-memory://",
			FulltextURI:  "in-memory://",
			CommitWithin: "10s",
		},
		Pipeline: Pipeline{
			ChunkSize:      100,
			ThreadPoolSize: 8,
			ThrottleLimit:  4,
			SkipLimit:      10,
		},
		Retry: Retry{
			Attempts: 3,
			Delay:    "2s",
		},
		MetricsPort: 0,
	}
}

// Load returns the built-in settings overridden by the contents of the
// TOML file at path.
func Load(path string) (Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, xerrors.Errorf("load config: %w", err)
	}
	return Parse(data)
}

// Parse returns the built-in settings overridden by the TOML document in
// data. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, xerrors.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings for errors.
func (cfg Config) Validate() error {
	var err error
	if cfg.Stores.AnnopageURI == "" {
		err = multierror.Append(err, xerrors.Errorf("annopage store URI has not been specified"))
	}
	if cfg.Stores.MetadataURI == "" {
		err = multierror.Append(err, xerrors.Errorf("metadata index URI has not been specified"))
	}
	if cfg.Stores.FulltextURI == "" {
		err = multierror.Append(err, xerrors.Errorf("fulltext index URI has not been specified"))
	}
	if _, dErr := cfg.Stores.CommitWithinDuration(); dErr != nil {
		err = multierror.Append(err, dErr)
	}
	if cfg.Pipeline.ChunkSize <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for chunk size"))
	}
	if cfg.Pipeline.ThreadPoolSize <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for thread pool size"))
	}
	if cfg.Pipeline.ThrottleLimit <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for throttle limit"))
	}
	if cfg.Pipeline.SkipLimit < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for skip limit"))
	}
	if cfg.Retry.Attempts <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for retry attempts"))
	}
	if _, dErr := cfg.Retry.DelayDuration(); dErr != nil {
		err = multierror.Append(err, dErr)
	}
	if cfg.Retry.RequestsPerSecond < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for requests per second"))
	}
	if _, tErr := cfg.FulltextSync.SinceTime(); tErr != nil {
		err = multierror.Append(err, tErr)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for metrics port"))
	}
	return err
}

// CommitWithinDuration parses the Solr commit interval.
func (s Stores) CommitWithinDuration() (time.Duration, error) {
	return parseDuration("commit within", s.CommitWithin)
}

// DelayDuration parses the wait between attempts.
func (r Retry) DelayDuration() (time.Duration, error) {
	return parseDuration("retry delay", r.Delay)
}

// SinceTime parses the start time override. An empty value yields the zero
// time.
func (f FulltextSync) SinceTime() (time.Time, error) {
	if f.Since == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, f.Since)
	if err != nil {
		return time.Time{}, xerrors.Errorf("invalid value for since: %w", err)
	}
	return t.UTC(), nil
}

func parseDuration(name, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, xerrors.Errorf("invalid value for %s: %w", name, err)
	} else if d < 0 {
		return 0, xerrors.Errorf("invalid value for %s: negative duration", name)
	}
	return d, nil
}
