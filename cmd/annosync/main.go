package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/annosync/annosync/annopage"
	"github.com/annosync/annosync/annopage/store/cdb"
	pagememory "github.com/annosync/annosync/annopage/store/memory"
	"github.com/annosync/annosync/config"
	"github.com/annosync/annosync/fulltext/index"
	ftmemory "github.com/annosync/annosync/fulltext/store/memory"
	"github.com/annosync/annosync/fulltext/store/solr"
	"github.com/annosync/annosync/indexer"
	"github.com/annosync/annosync/metadata"
	"github.com/annosync/annosync/metadata/store/es"
	mdmemory "github.com/annosync/annosync/metadata/store/memory"
	"github.com/annosync/annosync/retry"
	"github.com/annosync/annosync/service"
	"github.com/annosync/annosync/service/fulltextsync"
	"github.com/annosync/annosync/service/metadatasync"
	"github.com/annosync/annosync/service/metrics"
	"github.com/annosync/annosync/tracing"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/time/rate"
	"golang.org/x/xerrors"
)

var (
	appName = "annosync"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		_ = os.Stderr.Sync()
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	defaults := config.Default()

	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Usage = "keep the full-text index in sync with the annotation and metadata stores"
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "run a sync job",
			ArgsUsage: "[fulltext-sync|metadata-sync]",
			Action:    runJob,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "config",
					EnvVar: "CONFIG_FILE",
					Usage:  "A TOML file with settings; flags that are explicitly set take precedence",
				},
				cli.StringFlag{
					Name:   "annopage-uri",
					Value:  defaults.Stores.AnnopageURI,
					EnvVar: "ANNOPAGE_URI",
					Usage:  "The URI for connecting to the annotation page store (supported URIs: in-memory://, postgresql://user@host:26257/annopages?sslmode=disable)",
				},
				cli.StringFlag{
					Name:   "metadata-uri",
					Value:  defaults.Stores.MetadataURI,
					EnvVar: "METADATA_URI",
					Usage:  "The URI for connecting to the metadata index (supported URIs: in-memory://, es://node1:9200,...,nodeN:9200)",
				},
				cli.StringFlag{
					Name:   "fulltext-uri",
					Value:  defaults.Stores.FulltextURI,
					EnvVar: "FULLTEXT_URI",
					Usage:  "The URI for connecting to the full-text index (supported URIs: in-memory://, solr://host:8983/solr/<core>)",
				},
				cli.StringFlag{
					Name:   "commit-within",
					Value:  defaults.Stores.CommitWithin,
					EnvVar: "COMMIT_WITHIN",
					Usage:  "The Solr commitWithin interval for index writes; 0 commits every write",
				},
				cli.IntFlag{
					Name:   "chunk-size",
					Value:  defaults.Pipeline.ChunkSize,
					EnvVar: "CHUNK_SIZE",
					Usage:  "The number of records processed as a single chunk",
				},
				cli.IntFlag{
					Name:   "thread-pool-size",
					Value:  defaults.Pipeline.ThreadPoolSize,
					EnvVar: "THREAD_POOL_SIZE",
					Usage:  "The maximum number of records processed concurrently",
				},
				cli.IntFlag{
					Name:   "throttle-limit",
					Value:  defaults.Pipeline.ThrottleLimit,
					EnvVar: "THROTTLE_LIMIT",
					Usage:  "The maximum number of chunks in flight",
				},
				cli.IntFlag{
					Name:   "skip-limit",
					Value:  defaults.Pipeline.SkipLimit,
					EnvVar: "SKIP_LIMIT",
					Usage:  "The number of record failures tolerated before a job aborts",
				},
				cli.StringFlag{
					Name:   "since",
					EnvVar: "SINCE",
					Usage:  "An RFC3339 start time for fulltext-sync; defaults to the latest full-text modification time in the index",
				},
				cli.IntFlag{
					Name:   "retry-attempts",
					Value:  defaults.Retry.Attempts,
					EnvVar: "RETRY_ATTEMPTS",
					Usage:  "The maximum number of attempts for each store call",
				},
				cli.StringFlag{
					Name:   "retry-delay",
					Value:  defaults.Retry.Delay,
					EnvVar: "RETRY_DELAY",
					Usage:  "The wait between store call attempts",
				},
				cli.Float64Flag{
					Name:   "requests-per-second",
					Value:  defaults.Retry.RequestsPerSecond,
					EnvVar: "REQUESTS_PER_SECOND",
					Usage:  "The maximum rate of store calls; 0 means unlimited",
				},
				cli.IntFlag{
					Name:   "metrics-port",
					Value:  defaults.MetricsPort,
					EnvVar: "METRICS_PORT",
					Usage:  "The port for exposing prometheus metrics; 0 disables the metrics server",
				},
				cli.BoolFlag{
					Name:   "tracing",
					EnvVar: "TRACING",
					Usage:  "Report store call spans to Jaeger (configured via the JAEGER_* environment variables)",
				},
			},
		},
	}
	return app
}

func runJob(appCtx *cli.Context) error {
	job, err := service.ResolveJob(appCtx.Args().First())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(appCtx)
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	if cfg.Tracing {
		closer, err := tracing.Install(appName)
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()
	}

	source, err := getSourceStore(cfg.Stores.AnnopageURI)
	if err != nil {
		return err
	}
	defer closeIfCloser(source)

	md, err := getMetadataIndex(cfg.Stores.MetadataURI)
	if err != nil {
		return err
	}

	commitWithin, _ := cfg.Stores.CommitWithinDuration()
	fulltext, err := getFulltextIndex(cfg.Stores.FulltextURI, commitWithin)
	if err != nil {
		return err
	}
	defer closeIfCloser(fulltext)

	policy := retryPolicy(cfg.Retry)
	ftIndex := indexer.RetryingFulltextIndex(fulltext, policy)

	ixCfg := indexer.Config{
		SourceStore:    indexer.RetryingSourceStore(source, policy),
		MetadataIndex:  indexer.RetryingMetadataIndex(md, policy),
		FulltextIndex:  ftIndex,
		ChunkSize:      cfg.Pipeline.ChunkSize,
		ThreadPoolSize: cfg.Pipeline.ThreadPoolSize,
		ThrottleLimit:  cfg.Pipeline.ThrottleLimit,
		SkipLimit:      cfg.Pipeline.SkipLimit,
		Logger:         logger.WithField("component", "indexer"),
	}

	var jobSvc service.Service
	switch job {
	case indexer.JobFulltextSync:
		// The schema is only read once per run.
		if ixCfg.Schema, err = ftIndex.Schema(ctx); err != nil {
			return xerrors.Errorf("fetch fulltext index schema: %w", err)
		}
		ix, err := indexer.New(ixCfg)
		if err != nil {
			return err
		}
		since, _ := cfg.FulltextSync.SinceTime()
		if jobSvc, err = fulltextsync.NewService(fulltextsync.Config{
			Syncer:   ix,
			IndexAPI: ftIndex,
			Since:    since,
			Logger:   logger.WithField("service", job),
		}); err != nil {
			return err
		}
	case indexer.JobMetadataSync:
		ix, err := indexer.New(ixCfg)
		if err != nil {
			return err
		}
		if jobSvc, err = metadatasync.NewService(metadatasync.Config{
			Syncer: ix,
			Logger: logger.WithField("service", job),
		}); err != nil {
			return err
		}
	}

	group := service.Group{
		Services: []service.Service{jobSvc},
		Logger:   logger.WithField("component", "service-group"),
	}
	if cfg.MetricsPort != 0 {
		metricsSvc, err := metrics.NewService(metrics.Config{
			ListenAddr: fmt.Sprintf(":%d", cfg.MetricsPort),
			Logger:     logger.WithField("service", "metrics"),
		})
		if err != nil {
			return err
		}
		group.Services = append(group.Services, metricsSvc)
	}

	// Start signal watcher
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			logger.WithField("signal", s.String()).Infof("shutting down due to signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	err = group.Run(ctx)
	if err != nil && ctx.Err() != nil && xerrors.Is(err, context.Canceled) {
		// Interrupted runs are resumed by the next run.
		logger.Warn("job interrupted before completion")
		return nil
	}
	return err
}

// loadConfig merges the built-in defaults, the optional config file and
// the explicitly set flags, in that order.
func loadConfig(appCtx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := appCtx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}

	if appCtx.IsSet("annopage-uri") {
		cfg.Stores.AnnopageURI = appCtx.String("annopage-uri")
	}
	if appCtx.IsSet("metadata-uri") {
		cfg.Stores.MetadataURI = appCtx.String("metadata-uri")
	}
	if appCtx.IsSet("fulltext-uri") {
		cfg.Stores.FulltextURI = appCtx.String("fulltext-uri")
	}
	if appCtx.IsSet("commit-within") {
		cfg.Stores.CommitWithin = appCtx.String("commit-within")
	}
	if appCtx.IsSet("chunk-size") {
		cfg.Pipeline.ChunkSize = appCtx.Int("chunk-size")
	}
	if appCtx.IsSet("thread-pool-size") {
		cfg.Pipeline.ThreadPoolSize = appCtx.Int("thread-pool-size")
	}
	if appCtx.IsSet("throttle-limit") {
		cfg.Pipeline.ThrottleLimit = appCtx.Int("throttle-limit")
	}
	if appCtx.IsSet("skip-limit") {
		cfg.Pipeline.SkipLimit = appCtx.Int("skip-limit")
	}
	if appCtx.IsSet("since") {
		cfg.FulltextSync.Since = appCtx.String("since")
	}
	if appCtx.IsSet("retry-attempts") {
		cfg.Retry.Attempts = appCtx.Int("retry-attempts")
	}
	if appCtx.IsSet("retry-delay") {
		cfg.Retry.Delay = appCtx.String("retry-delay")
	}
	if appCtx.IsSet("requests-per-second") {
		cfg.Retry.RequestsPerSecond = appCtx.Float64("requests-per-second")
	}
	if appCtx.IsSet("metrics-port") {
		cfg.MetricsPort = appCtx.Int("metrics-port")
	}
	if appCtx.IsSet("tracing") {
		cfg.Tracing = appCtx.Bool("tracing")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, xerrors.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func retryPolicy(cfg config.Retry) retry.Policy {
	delay, _ := cfg.DelayDuration()
	policy := retry.Policy{
		MaxAttempts: cfg.Attempts,
		Delay:       delay,
		Logger:      logger.WithField("component", "retry"),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		policy.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return policy
}

func getSourceStore(annopageURI string) (annopage.Store, error) {
	uri, err := url.Parse(annopageURI)
	if err != nil {
		return nil, xerrors.Errorf("could not parse annotation page store URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory annotation page store")
		return pagememory.NewInMemoryStore(), nil
	case "postgresql":
		logger.Info("using CDB annotation page store")
		return cdb.NewCockroachDBStore(annopageURI)
	default:
		return nil, xerrors.Errorf("unsupported annotation page store URI scheme: %q", uri.Scheme)
	}
}

func getMetadataIndex(metadataURI string) (metadata.Store, error) {
	uri, err := url.Parse(metadataURI)
	if err != nil {
		return nil, xerrors.Errorf("could not parse metadata index URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory metadata index")
		return mdmemory.NewInMemoryStore(), nil
	case "es":
		nodes := strings.Split(uri.Host, ",")
		for i := 0; i < len(nodes); i++ {
			nodes[i] = "http://" + nodes[i]
		}
		logger.Info("using ES metadata index")
		return es.NewElasticSearchStore(nodes, false)
	default:
		return nil, xerrors.Errorf("unsupported metadata index URI scheme: %q", uri.Scheme)
	}
}

func getFulltextIndex(fulltextURI string, commitWithin time.Duration) (index.Indexer, error) {
	uri, err := url.Parse(fulltextURI)
	if err != nil {
		return nil, xerrors.Errorf("could not parse fulltext index URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory fulltext index")
		return ftmemory.NewInMemoryBleveIndexer()
	case "solr", "solrs":
		scheme := "http"
		if uri.Scheme == "solrs" {
			scheme = "https"
		}
		coreURL := (&url.URL{Scheme: scheme, User: uri.User, Host: uri.Host, Path: uri.Path}).String()
		logger.WithField("core", coreURL).Info("using Solr fulltext index")
		return solr.NewSolrIndexer(coreURL, commitWithin)
	default:
		return nil, xerrors.Errorf("unsupported fulltext index URI scheme: %q", uri.Scheme)
	}
}

func closeIfCloser(v interface{}) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}
