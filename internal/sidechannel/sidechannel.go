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

package sidechannel

import (
	"context"
	"fmt"
	"github.com/go-errors/errors"
	"github.com/hashicorp/go-uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgship/pgship/internal/logging"
	spiconfig "github.com/pgship/pgship/spi/config"
	"github.com/pgship/pgship/spi/schema"
	spisidechannel "github.com/pgship/pgship/spi/sidechannel"
	"github.com/pgship/pgship/spi/version"
	"strings"
	"sync"
	"time"
)

type connectionState int8

const (
	stateDisconnected connectionState = iota
	stateConnected
	stateReconnecting
)

const (
	catalogQueryTimeout = time.Second * 10
	batchWriteTimeout   = time.Minute
)

type sideChannel struct {
	logger      *logging.Logger
	pgxConfig   *pgx.ConnConfig
	schemaName  string
	tableName   string
	timeColumn  string
	extraColumn string

	mutex      sync.Mutex
	state      connectionState
	connection *pgx.Conn
	schema     *schema.Schema
}

// NewSideChannel builds the database channel from the
// configuration. The connection is not established before
// Connect is called.
func NewSideChannel(
	config *spiconfig.Config,
) (spisidechannel.SideChannel, error) {

	logger, err := logging.NewLogger("SideChannel")
	if err != nil {
		return nil, err
	}

	pgxConfig, err := pgx.ParseConfig(
		spiconfig.GetOrDefault(config, spiconfig.PropertyPostgresqlConnection, ""),
	)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	if password := spiconfig.GetOrDefault(
		config, spiconfig.PropertyPostgresqlPassword, "",
	); password != "" {
		pgxConfig.Password = password
	}

	if pgxConfig.RuntimeParams == nil {
		pgxConfig.RuntimeParams = make(map[string]string)
	}
	if _, present := pgxConfig.RuntimeParams["application_name"]; !present {
		suffix, err := uuid.GenerateUUID()
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}
		pgxConfig.RuntimeParams["application_name"] = fmt.Sprintf("%s_%s", version.BinName, suffix[:8])
	}

	table := spiconfig.GetOrDefault(config, spiconfig.PropertySinkTable, "")
	if table == "" {
		return nil, errors.Errorf("sink table name required")
	}

	schemaName := ""
	tableName := table
	if index := strings.LastIndex(table, "."); index != -1 {
		schemaName = table[:index]
		tableName = table[index+1:]
	}

	return &sideChannel{
		logger:      logger,
		pgxConfig:   pgxConfig,
		schemaName:  schemaName,
		tableName:   tableName,
		timeColumn: spiconfig.GetOrDefault(
			config, spiconfig.PropertySinkTimeColumn, spiconfig.DefaultTimeColumnName,
		),
		extraColumn: spiconfig.GetOrDefault(
			config, spiconfig.PropertySinkExtraColumn, spiconfig.DefaultExtraColumnName,
		),
	}, nil
}

func (sc *sideChannel) Connect() (*schema.Schema, error) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.connect()
}

func (sc *sideChannel) Schema() *schema.Schema {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.schema
}

func (sc *sideChannel) WriteBatch(
	statement string,
) error {

	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.state != stateConnected {
		if _, err := sc.connect(); err != nil {
			return &spisidechannel.RetryableError{Cause: err}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchWriteTimeout)
	defer cancel()

	if _, err := sc.connection.Exec(ctx, statement); err != nil {
		if isTransientError(err) {
			sc.logger.Warnf("transient failure writing batch: %s", err.Error())
			sc.reconnect()
			return &spisidechannel.RetryableError{Cause: err}
		}
		return errors.Wrap(err, 0)
	}
	return nil
}

func (sc *sideChannel) Close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	sc.state = stateDisconnected
	sc.schema = nil
	if sc.connection == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	connection := sc.connection
	sc.connection = nil
	return connection.Close(ctx)
}

// connect dials the server, verifies its version and resolves
// the destination table's schema. Expects sc.mutex to be held.
func (sc *sideChannel) connect() (*schema.Schema, error) {
	if sc.connection != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		if err := sc.connection.Close(ctx); err != nil {
			sc.logger.Debugf("closing stale connection: %s", err.Error())
		}
		cancel()
		sc.connection = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	connection, err := pgx.ConnectConfig(ctx, sc.pgxConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	sc.connection = connection
	if err := sc.checkServerVersion(); err != nil {
		return nil, err
	}

	resolved, err := sc.resolveSchema()
	if err != nil {
		return nil, err
	}

	sc.schema = resolved
	sc.state = stateConnected
	sc.logger.Infof(
		"schema resolved for table '%s': %d mapped columns",
		sc.canonicalTableName(), len(resolved.MappedColumns()),
	)
	return resolved, nil
}

// reconnect rebuilds the connection and re-resolves the schema
// after a transient failure. Expects sc.mutex to be held. Failing
// to reconnect leaves the channel disconnected; the next write
// attempt dials again.
func (sc *sideChannel) reconnect() {
	sc.state = stateReconnecting
	sc.schema = nil

	if _, err := sc.connect(); err != nil {
		sc.logger.Warnf("reconnect failed: %s", err.Error())
		sc.state = stateDisconnected
	}
}

func (sc *sideChannel) checkServerVersion() error {
	var versionString string
	if err := sc.queryRow(queryPostgreSqlVersion, func(row pgx.Row) error {
		return row.Scan(&versionString)
	}); err != nil {
		return errors.Wrap(err, 0)
	}

	serverVersion, err := version.ParsePostgresVersion(versionString)
	if err != nil {
		return err
	}

	if serverVersion.Compare(version.PG_MIN_VERSION) < 0 {
		return errors.Errorf(
			"PostgreSQL version %s too old, required minimum is %s",
			serverVersion, version.PG_MIN_VERSION,
		)
	}
	return nil
}

// resolveSchema runs the two catalog queries and hands the result
// to the schema builder. Expects sc.mutex to be held.
func (sc *sideChannel) resolveSchema() (*schema.Schema, error) {
	enums, err := sc.readEnumTypes()
	if err != nil {
		return nil, err
	}

	columns, err := sc.readTableColumns()
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("table '%s' not found or empty", sc.canonicalTableName())
	}

	resolved, skipped, err := schema.Build(
		sc.canonicalTableName(), columns, enums, sc.timeColumn, sc.extraColumn,
	)
	if err != nil {
		return nil, err
	}

	for _, column := range skipped {
		sc.logger.Warnf(
			"column '%s' has unsupported type '%s', values will be stored in '%s'",
			column.Name, column.Descriptor, sc.extraColumn,
		)
	}
	return resolved, nil
}

func (sc *sideChannel) readEnumTypes() (schema.EnumCatalog, error) {
	enums := make(schema.EnumCatalog)
	if err := sc.queryFunc(func(row pgx.Row) error {
		var enumType, enumLabel string
		if err := row.Scan(&enumType, &enumLabel); err != nil {
			return err
		}
		enums[enumType] = append(enums[enumType], enumLabel)
		return nil
	}, queryReadEnumTypes); err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return enums, nil
}

func (sc *sideChannel) readTableColumns() ([]schema.Column, error) {
	columns := make([]schema.Column, 0)
	if err := sc.queryFunc(func(row pgx.Row) error {
		var column schema.Column
		if err := row.Scan(&column.Name, &column.Descriptor); err != nil {
			return err
		}
		columns = append(columns, column)
		return nil
	}, queryReadTableColumns, sc.schemaName, sc.tableName); err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return columns, nil
}

func (sc *sideChannel) canonicalTableName() string {
	if sc.schemaName == "" {
		return sc.tableName
	}
	return fmt.Sprintf("%s.%s", sc.schemaName, sc.tableName)
}

type rowFunction = func(
	row pgx.Row,
) error

func (sc *sideChannel) queryFunc(
	fn rowFunction, query string, args ...any,
) error {

	ctx, cancel := context.WithTimeout(context.Background(), catalogQueryTimeout)
	defer cancel()

	rows, err := sc.connection.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (sc *sideChannel) queryRow(
	query string, scan rowFunction, args ...any,
) error {

	ctx, cancel := context.WithTimeout(context.Background(), catalogQueryTimeout)
	defer cancel()

	return scan(sc.connection.QueryRow(ctx, query, args...))
}
