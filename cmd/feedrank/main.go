package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jessevdk/go-flags"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Decentr-net/logrus/sentry"

	"github.com/feedhub/feedrank/internal/health"
	"github.com/feedhub/feedrank/internal/metrics"
	"github.com/feedhub/feedrank/internal/server"
	"github.com/feedhub/feedrank/internal/service/impl"
	"github.com/feedhub/feedrank/internal/storage/postgres"
	"github.com/feedhub/feedrank/internal/storage/redis"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Host           string        `long:"http.host" env:"HTTP_HOST" default:"0.0.0.0" description:"IP to listen on"`
	Port           int           `long:"http.port" env:"HTTP_PORT" default:"8080" description:"port to listen on for insecure connections, defaults to a random value"`
	RequestTimeout time.Duration `long:"http.request-timeout" env:"HTTP_REQUEST_TIMEOUT" default:"10s" description:"request processing timeout"`

	Postgres                   string `long:"postgres" env:"POSTGRES" default:"host=localhost port=5432 user=postgres password=root sslmode=disable" description:"postgres dsn"`
	PostgresMaxOpenConnections int    `long:"postgres.max_open_connections" env:"POSTGRES_MAX_OPEN_CONNECTIONS" default:"0" description:"postgres maximal open connections count, 0 means unlimited"`
	PostgresMaxIdleConnections int    `long:"postgres.max_idle_connections" env:"POSTGRES_MAX_IDLE_CONNECTIONS" default:"5" description:"postgres maximal idle connections count"`
	PostgresMigrations         string `long:"postgres.migrations" env:"POSTGRES_MIGRATIONS" default:"migrations/postgres" description:"postgres migrations directory"`

	RedisAddr     string `long:"redis.addr" env:"REDIS_ADDR" default:"localhost:6379" description:"redis address"`
	RedisPassword string `long:"redis.password" env:"REDIS_PASSWORD" description:"redis password"`
	RedisDB       int    `long:"redis.db" env:"REDIS_DB" default:"0" description:"redis database"`

	FeedCandidateWindow time.Duration `long:"feed.candidate_window" env:"FEED_CANDIDATE_WINDOW" default:"168h" description:"max age of posts considered for feed and recommendations"`
	FeedCandidateLimit  uint16        `long:"feed.candidate_limit" env:"FEED_CANDIDATE_LIMIT" default:"1000" description:"max count of posts considered for feed and recommendations, 0 means unlimited"`
	ShownTTL            time.Duration `long:"feed.shown_ttl" env:"FEED_SHOWN_TTL" default:"30m" description:"lifetime of feed session"`
	ShownWindow         int           `long:"feed.shown_window" env:"FEED_SHOWN_WINDOW" default:"50" description:"count of recently shown companies and authors affecting diversity"`

	CacheTTL time.Duration `long:"cache.ttl" env:"CACHE_TTL" default:"1m" description:"trending responses cache lifetime"`

	LogLevel  string `long:"log.level" env:"LOG_LEVEL" default:"info" description:"Log level" choice:"debug" choice:"info" choice:"warning" choice:"error"`
	SentryDSN string `long:"sentry.dsn" env:"SENTRY_DSN" description:"sentry dsn"`
}{}

var errTerminated = errors.New("terminated")

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Feedrank"
	parser.LongDescription = "Feedrank serves ranked feeds of feedback posts"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	lvl, _ := logrus.ParseLevel(opts.LogLevel) // err will always be nil
	logrus.SetLevel(lvl)

	if opts.SentryDSN != "" {
		hook, err := sentry.NewHook(sentry.Options{
			Dsn:              opts.SentryDSN,
			AttachStacktrace: true,
			Release:          health.GetVersion(),
			ServerName:       "feedrank",
		}, logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel)

		if err != nil {
			logrus.WithError(err).Fatal("failed to init sentry")
		}

		logrus.AddHook(hook)
	} else {
		logrus.Info("empty sentry dsn")
		logrus.Warn("skip sentry initialization")
	}

	db := mustGetDB()
	pg := postgres.New(db)
	rs := redis.New(mustGetRedis())

	srv := impl.New(pg, rs, impl.Config{
		CandidateWindow: opts.FeedCandidateWindow,
		CandidateLimit:  opts.FeedCandidateLimit,
		ShownTTL:        opts.ShownTTL,
		ShownWindow:     opts.ShownWindow,
	})

	metrics.MustRegister(prometheus.DefaultRegisterer)

	r := chi.NewMux()
	r.Get("/health", health.Handler(
		5*time.Second,
		health.SubjectPinger("postgres", pg.Ping),
		health.SubjectPinger("redis", rs.Ping),
	))
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		server.SetupRouter(srv, rs, opts.CacheTTL, r, opts.RequestTimeout)
	})

	httpSrv := http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler: r,
	}

	gr, _ := errgroup.WithContext(context.Background())
	gr.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	gr.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

		s := <-sigs

		logrus.Infof("terminating by %s signal", s)

		ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
		defer cancel()

		if err := httpSrv.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("failed to gracefully shutdown server")
		}

		return errTerminated
	})

	logrus.Info("service started")

	if err := gr.Wait(); err != nil && !errors.Is(err, errTerminated) {
		logrus.WithError(err).Fatal("service unexpectedly closed")
	}
}

func mustGetDB() *sql.DB {
	db, err := sql.Open("postgres", opts.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create postgres connection")
	}
	db.SetMaxOpenConns(opts.PostgresMaxOpenConnections)
	db.SetMaxIdleConns(opts.PostgresMaxIdleConnections)

	if err := db.PingContext(context.Background()); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	driver, err := migratep.WithInstance(db, &migratep.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create database migrate driver")
	}

	migrator, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", opts.PostgresMigrations), "postgres", driver)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}

	switch v, d, err := migrator.Version(); err {
	case nil:
		logrus.Infof("database version %d with dirty state %t", v, d)
	case migrate.ErrNilVersion:
		logrus.Info("database version: nil")
	default:
		logrus.WithError(err).Fatal("failed to get version")
	}

	switch err := migrator.Up(); err {
	case nil:
		logrus.Info("database was migrated")
	case migrate.ErrNoChange:
		logrus.Info("database is up-to-date")
	default:
		logrus.WithError(err).Fatal("failed to migrate db")
	}

	return db
}

func mustGetRedis() *goredis.Client {
	c := goredis.NewClient(&goredis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	if err := c.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Fatal("failed to ping redis")
	}

	return c
}
