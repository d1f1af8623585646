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

package encoding

import (
	"github.com/pgship/pgship/spi/pgsql"
	"github.com/pgship/pgship/spi/record"
	"github.com/pgship/pgship/spi/schema"
	"github.com/samber/lo"
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampFormat renders with microsecond precision and an
// explicit zone offset, after normalization to UTC.
const timestampFormat = "2006-01-02 15:04:05.000000 -0700"

// Coerce converts a single record value into a SQL literal for
// the given column type. A null value coerces to the DEFAULT
// sentinel regardless of the target type. Returns false when the
// value cannot be represented in the column's type; such values
// stay in the record and fall through into the extra column.
func Coerce(
	value record.Value, columnType schema.ColumnType,
) (string, bool) {

	if value.IsNull() {
		return pgsql.DefaultValue, true
	}

	switch columnType.Kind {
	case schema.Timestamp:
		return coerceTimestamp(value)
	case schema.Text, schema.Json:
		return coerceJson(value)
	case schema.Boolean:
		return coerceBoolean(value)
	case schema.Integer:
		return coerceInteger(value)
	case schema.Float:
		return coerceFloat(value)
	case schema.Enum:
		return coerceEnum(value, columnType.EnumLabels)
	}
	return "", false
}

func coerceTimestamp(
	value record.Value,
) (string, bool) {

	switch value.Kind() {
	case record.String:
		ts, err := time.Parse(time.RFC3339, value.Str())
		if err != nil {
			return "", false
		}
		return pgsql.QuoteLiteral(ts.UTC().Format(timestampFormat)), true
	case record.Number:
		return pgsql.QuoteLiteral(EpochToTime(value.Num()).Format(timestampFormat)), true
	}
	return "", false
}

// EpochToTime interprets a number as Unix epoch seconds with the
// fractional part carrying sub-second precision.
func EpochToTime(
	epoch float64,
) time.Time {

	sec := math.Floor(epoch)
	nsec := math.Round((epoch - sec) * float64(time.Second))
	return time.Unix(int64(sec), int64(nsec)).UTC()
}

// coerceJson serves both json and text columns: text columns
// store the compact JSON encoding of the value, so plain strings
// end up JSON quoted inside the text column.
func coerceJson(
	value record.Value,
) (string, bool) {

	document, err := record.EncodeJSON(value)
	if err != nil {
		return "", false
	}
	return pgsql.QuoteLiteral(document), true
}

func coerceBoolean(
	value record.Value,
) (string, bool) {

	switch value.Kind() {
	case record.Boolean:
		return booleanLiteral(value.Bool()), true
	case record.String:
		s := value.Str()
		return booleanLiteral(strings.EqualFold(s, "t") || strings.EqualFold(s, "true")), true
	case record.Number:
		return booleanLiteral(value.Num() != 0), true
	}
	return "", false
}

func booleanLiteral(
	value bool,
) string {

	if value {
		return "TRUE"
	}
	return "FALSE"
}

func coerceInteger(
	value record.Value,
) (string, bool) {

	switch value.Kind() {
	case record.Boolean:
		if value.Bool() {
			return "1", true
		}
		return "0", true
	case record.String:
		return strconv.FormatInt(parseLeadingInt(value.Str()), 10), true
	case record.Number:
		return strconv.FormatInt(int64(value.Num()), 10), true
	}
	return "", false
}

// parseLeadingInt parses the leading decimal digits of a string,
// with an optional sign. Malformed input yields 0 instead of a
// coercion failure, mirroring the tolerance of atoi-style parsing.
func parseLeadingInt(
	s string,
) int64 {

	digits := 0
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		digits++
	}
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}

	value, err := strconv.ParseInt(s[:digits], 10, 64)
	if err != nil {
		return 0
	}
	return value
}

func coerceFloat(
	value record.Value,
) (string, bool) {

	switch value.Kind() {
	case record.Number:
		return strconv.FormatFloat(value.Num(), 'g', -1, 64), true
	case record.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value.Str()), 64)
		if err != nil {
			parsed = 0
		}
		return strconv.FormatFloat(parsed, 'g', -1, 64), true
	}
	return "", false
}

func coerceEnum(
	value record.Value, labels []string,
) (string, bool) {

	if value.Kind() != record.String {
		return "", false
	}
	if !lo.Contains(labels, value.Str()) {
		return "", false
	}
	return pgsql.QuoteLiteral(value.Str()), true
}
