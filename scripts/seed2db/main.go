package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jessevdk/go-flags"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/feedhub/feedrank/internal/storage/postgres"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Dump               string `long:"dump" env:"DUMP" description:"path to json dump, random data is generated if empty"`
	Fake               int    `long:"fake.posts" env:"FAKE_POSTS" default:"500" description:"count of random posts to generate"`
	FakeSeed           int64  `long:"fake.seed" env:"FAKE_SEED" default:"0" description:"random generator seed, 0 means random"`
	Postgres           string `long:"postgres" env:"POSTGRES" default:"host=localhost port=5432 user=postgres password=root sslmode=disable" description:"postgres dsn"`
	PostgresMigrations string `long:"postgres.migrations" env:"POSTGRES_MIGRATIONS" default:"scripts/migrations/postgres" description:"postgres migrations directory"`
}{}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "seed2db"
	parser.LongDescription = "Posts dump to database importer"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	logrus.Info("seed2db started")

	d := mustGetDump()

	db := mustGetDB()
	s := postgres.New(db)

	if err := importDump(context.Background(), s, d); err != nil {
		logrus.WithError(err).Fatal("failed to import dump")
	}

	logrus.Infof("done: %d posts, %d votes, %d follows, %d unfollows", len(d.Posts), len(d.Votes), len(d.Follows), len(d.Unfollows))
}

func mustGetDump() *dump {
	if opts.Dump == "" {
		seed := opts.FakeSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		logrus.Infof("generating %d random posts with seed %d", opts.Fake, seed)

		return fakeDump(opts.Fake, seed, time.Now().UTC())
	}

	b, err := ioutil.ReadFile(opts.Dump)
	if err != nil {
		logrus.WithError(err).Fatal("failed to read dump")
	}

	var d dump
	if err := json.Unmarshal(b, &d); err != nil {
		logrus.WithError(err).Fatal("failed to unmarshal dump")
	}

	return &d
}

func mustGetDB() *sql.DB {
	db, err := sql.Open("postgres", opts.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create postgres connection")
	}

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
