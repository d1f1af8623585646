/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"bufio"
	"fmt"
	"github.com/pgship/pgship/internal/filtering"
	"github.com/pgship/pgship/internal/logging"
	"github.com/pgship/pgship/internal/shipper"
	"github.com/pgship/pgship/internal/sidechannel"
	"github.com/pgship/pgship/internal/stats"
	"github.com/pgship/pgship/internal/supporting"
	"github.com/pgship/pgship/internal/waiting"
	spiconfig "github.com/pgship/pgship/spi/config"
	"github.com/pgship/pgship/spi/record"
	"github.com/pgship/pgship/spi/version"
	"github.com/urfave/cli"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

const maxLineLength = 1024 * 1024

var (
	configurationFile string
	verbose           bool
	withCaller        bool
	logToStdErr       bool
	versionOnly       bool
)

func main() {
	app := &cli.App{
		Name:  version.BinName,
		Usage: "Ships semi-structured log records into a PostgreSQL table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config,c",
				Value:       "",
				Usage:       "Load configuration from `FILE`",
				Destination: &configurationFile,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "Show verbose output",
				Destination: &verbose,
			},
			&cli.BoolFlag{
				Name:        "caller",
				Usage:       "Collect caller information for log messages",
				Destination: &withCaller,
			},
			&cli.BoolFlag{
				Name:        "log-to-stderr",
				Usage:       "Redirects logging output to stderr, keeping stdout free for piping",
				Destination: &logToStdErr,
			},
			&cli.BoolFlag{
				Name:        "version",
				Usage:       "Prints the version and exits",
				Destination: &versionOnly,
			},
		},
		Action: start,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func start(*cli.Context) error {
	fmt.Fprintf(os.Stderr, "%s version %s (git revision %s; branch %s)\n",
		version.BinName, version.Version, version.CommitHash, version.Branch,
	)

	if versionOnly {
		return nil
	}

	logging.WithCaller = withCaller
	logging.WithVerbose = verbose

	config := &spiconfig.Config{}

	// No configuration file set? Try env variable!
	if configurationFile == "" {
		if cf, present := os.LookupEnv("PGSHIP_CONFIG"); present {
			fmt.Fprintf(os.Stderr, "Using configuration file from environment variable\n")
			configurationFile = cf
		}
	}

	if configurationFile != "" {
		fmt.Fprintf(os.Stderr, "Loading configuration file: %s\n", configurationFile)
		f, err := os.Open(configurationFile)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("Configuration file couldn't be opened: %v\n", err), 3)
		}

		b, err := io.ReadAll(f)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("Configuration file couldn't be read: %v\n", err), 4)
		}

		tomlConfig := filepath.Ext(strings.ToLower(configurationFile)) == ".toml"
		if err := spiconfig.Unmarshall(b, config, tomlConfig); err != nil {
			return cli.NewExitError(fmt.Sprintf("Configuration file couldn't be decoded: %v\n", err), 5)
		}
	}

	if err := logging.InitializeLogging(config, logToStdErr); err != nil {
		return err
	}

	if spiconfig.GetOrDefault(config, spiconfig.PropertyPostgresqlConnection, "") == "" {
		return cli.NewExitError("PostgreSQL connection string required", 6)
	}
	if spiconfig.GetOrDefault(config, spiconfig.PropertySinkTable, "") == "" {
		return cli.NewExitError("Sink table name required", 7)
	}

	logger, err := logging.NewLogger("PgShip")
	if err != nil {
		return supporting.AdaptError(err, 1)
	}

	statsService := stats.NewStatsService(config)
	if err := statsService.Start(); err != nil {
		return supporting.AdaptError(err, 8)
	}

	sideChannel, err := sidechannel.NewSideChannel(config)
	if err != nil {
		return supporting.AdaptError(err, 9)
	}

	filter, err := filtering.NewRecordFilter(config.Sink.Filter)
	if err != nil {
		return supporting.AdaptErrorWithMessage(err, "Invalid record filter", 10)
	}

	recordShipper, err := shipper.NewShipper(
		config, sideChannel, filter, statsService.NewReporter("shipper"),
	)
	if err != nil {
		return supporting.AdaptError(err, 11)
	}

	if err := recordShipper.Start(); err != nil {
		return supporting.AdaptErrorWithMessage(err, "Failed to start shipping", 12)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := waiting.NewWaiter()
	go func() {
		<-signals
		logger.Infoln("Shutting down...")
		if err := recordShipper.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Hard error while stopping shipper: %v\n", err)
			os.Exit(1)
		}
		_ = statsService.Stop()
		done.Signal()
	}()

	go func() {
		ingest(logger, recordShipper, config)
		if err := recordShipper.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Hard error while stopping shipper: %v\n", err)
			os.Exit(1)
		}
		_ = statsService.Stop()
		done.Signal()
	}()

	if err := done.Await(); err != nil {
		return supporting.AdaptError(err, 13)
	}

	return nil
}

// ingest reads newline delimited JSON records from stdin until
// EOF. Malformed lines are dropped with a warning, never aborting
// the stream.
func ingest(
	logger *logging.Logger, recordShipper *shipper.Shipper, config *spiconfig.Config,
) {

	timeProperty := spiconfig.GetOrDefault(
		config, spiconfig.PropertySinkTimeProperty, spiconfig.DefaultTimePropertyName,
	)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		rec, err := record.Parse(line)
		if err != nil {
			logger.Warnf("dropping malformed record: %s", err.Error())
			continue
		}

		eventTime, rec := shipper.ExtractEventTime(rec, timeProperty, time.Now().UTC())
		if err := recordShipper.Ship(eventTime, rec, len(line)); err != nil {
			logger.Warnf("record rejected: %s", err.Error())
			return
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Errorf("reading stdin failed: %s", err.Error())
	}
}
