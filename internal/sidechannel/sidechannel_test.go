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
	spiconfig "github.com/pgship/pgship/spi/config"
	"github.com/stretchr/testify/assert"
	"strings"
	"testing"
)

func Test_New_Side_Channel(
	t *testing.T,
) {

	config := &spiconfig.Config{
		PostgreSQL: spiconfig.PostgreSQLConfig{
			Connection: "postgres://user@localhost:5432/logs",
		},
		Sink: spiconfig.SinkConfig{
			Table: "telemetry.logs",
		},
	}

	channel, err := NewSideChannel(config)
	assert.NoError(t, err)

	sc := channel.(*sideChannel)
	assert.Equal(t, "telemetry", sc.schemaName)
	assert.Equal(t, "logs", sc.tableName)
	assert.Equal(t, "time", sc.timeColumn)
	assert.Equal(t, "extra", sc.extraColumn)
	assert.Equal(t, "telemetry.logs", sc.canonicalTableName())
	assert.Equal(
		t, true,
		strings.HasPrefix(sc.pgxConfig.RuntimeParams["application_name"], "pgship_"),
	)

	// Not connected yet, no schema resolved
	assert.Nil(t, channel.Schema())
}

func Test_New_Side_Channel_Unqualified_Table(
	t *testing.T,
) {

	config := &spiconfig.Config{
		PostgreSQL: spiconfig.PostgreSQLConfig{
			Connection: "postgres://user@localhost:5432/logs",
		},
		Sink: spiconfig.SinkConfig{
			Table:       "logs",
			TimeColumn:  "logged_at",
			ExtraColumn: "overflow",
		},
	}

	channel, err := NewSideChannel(config)
	assert.NoError(t, err)

	sc := channel.(*sideChannel)
	assert.Equal(t, "", sc.schemaName)
	assert.Equal(t, "logs", sc.tableName)
	assert.Equal(t, "logged_at", sc.timeColumn)
	assert.Equal(t, "overflow", sc.extraColumn)
	assert.Equal(t, "logs", sc.canonicalTableName())
}

func Test_New_Side_Channel_Invalid_Configuration(
	t *testing.T,
) {

	_, err := NewSideChannel(&spiconfig.Config{
		PostgreSQL: spiconfig.PostgreSQLConfig{
			Connection: "://not-a-connection-string",
		},
	})
	assert.Error(t, err)

	_, err = NewSideChannel(&spiconfig.Config{
		PostgreSQL: spiconfig.PostgreSQLConfig{
			Connection: "postgres://user@localhost:5432/logs",
		},
	})
	assert.Error(t, err)
}
