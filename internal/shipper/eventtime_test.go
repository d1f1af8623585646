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

package shipper

import (
	"github.com/pgship/pgship/spi/record"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func Test_Extract_Event_Time_From_String(
	t *testing.T,
) {

	fallback := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := record.FromMap(map[string]any{
		"timestamp": "2019-10-10T10:01:20.1234Z",
		"message":   "Starting up...",
	})

	eventTime, stripped := ExtractEventTime(rec, "timestamp", fallback)
	assert.Equal(t, time.Date(2019, 10, 10, 10, 1, 20, 123400000, time.UTC), eventTime)

	// The time property is consumed, the original record isn't touched
	_, present := stripped["timestamp"]
	assert.Equal(t, false, present)
	assert.Len(t, rec, 2)
}

func Test_Extract_Event_Time_From_Epoch_Number(
	t *testing.T,
) {

	fallback := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := record.FromMap(map[string]any{
		"timestamp": 1.5,
	})

	eventTime, stripped := ExtractEventTime(rec, "timestamp", fallback)
	assert.Equal(t, time.Date(1970, 1, 1, 0, 0, 1, 500000000, time.UTC), eventTime)
	assert.Len(t, stripped, 0)
}

func Test_Extract_Event_Time_Missing_Property_Uses_Fallback(
	t *testing.T,
) {

	fallback := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := record.FromMap(map[string]any{
		"message": "no time here",
	})

	eventTime, same := ExtractEventTime(rec, "timestamp", fallback)
	assert.Equal(t, fallback, eventTime)
	assert.Len(t, same, 1)
}

func Test_Extract_Event_Time_Malformed_Property_Stays_In_Record(
	t *testing.T,
) {

	fallback := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := record.FromMap(map[string]any{
		"timestamp": "10/10/2019 10:01:20",
	})

	eventTime, kept := ExtractEventTime(rec, "timestamp", fallback)
	assert.Equal(t, fallback, eventTime)

	// An unparseable value is preserved for the extra column
	_, present := kept["timestamp"]
	assert.Equal(t, true, present)
}
