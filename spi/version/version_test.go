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

package version

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_Parse_Postgres_Version(
	t *testing.T,
) {

	parsed, err := ParsePostgresVersion("15.2")
	assert.NoError(t, err)
	assert.Equal(t, uint(15), parsed.Major())
	assert.Equal(t, uint(2), parsed.Minor())
	assert.Equal(t, "15.2", parsed.String())

	parsed, err = ParsePostgresVersion("16.0 (Debian 16.0-1.pgdg120+1)")
	assert.NoError(t, err)
	assert.Equal(t, uint(16), parsed.Major())
	assert.Equal(t, uint(0), parsed.Minor())
}

func Test_Parse_Postgres_Version_Invalid(
	t *testing.T,
) {

	_, err := ParsePostgresVersion("garbage")
	assert.Error(t, err)

	_, err = ParsePostgresVersion("")
	assert.Error(t, err)
}

func Test_Postgres_Version_Compare(
	t *testing.T,
) {

	assert.Equal(t, -1, PG_MIN_VERSION.Compare(PG_14_VERSION))
	assert.Equal(t, 1, PG_15_VERSION.Compare(PG_14_VERSION))
	assert.Equal(t, 0, PG_14_VERSION.Compare(PG_14_VERSION))
}
