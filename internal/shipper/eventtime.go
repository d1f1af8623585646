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
	"github.com/pgship/pgship/spi/encoding"
	"github.com/pgship/pgship/spi/record"
	"time"
)

// ExtractEventTime pulls the event time out of the record's
// configured time property. RFC 3339 strings and epoch second
// numbers are understood; anything else keeps the property in the
// record and falls back to the given time (usually arrival time).
// On success the property is removed so it neither maps to a
// column nor lands in the extra column twice.
func ExtractEventTime(
	rec record.Record, property string, fallback time.Time,
) (time.Time, record.Record) {

	value, present := rec[property]
	if !present {
		return fallback, rec
	}

	switch value.Kind() {
	case record.String:
		if ts, err := time.Parse(time.RFC3339, value.Str()); err == nil {
			return ts.UTC(), rec.Without(property)
		}
	case record.Number:
		return encoding.EpochToTime(value.Num()), rec.Without(property)
	}
	return fallback, rec
}
