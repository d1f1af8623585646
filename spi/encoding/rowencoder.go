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
	"fmt"
	"github.com/pgship/pgship/internal/logging"
	"github.com/pgship/pgship/spi/pgsql"
	"github.com/pgship/pgship/spi/record"
	"github.com/pgship/pgship/spi/schema"
	"strings"
	"time"
)

// RowEncoder converts (event time, record) pairs into SQL value
// tuple literals and batches of tuples into a single multi-row
// INSERT statement. It is bound to one resolved Schema; after a
// reconnect a fresh encoder is created from the re-resolved
// Schema.
type RowEncoder struct {
	logger      *logging.Logger
	schema      *schema.Schema
	columnNames []string
	tableName   string
}

func NewRowEncoder(
	s *schema.Schema,
) (*RowEncoder, error) {

	logger, err := logging.NewLogger("RowEncoder")
	if err != nil {
		return nil, err
	}

	return &RowEncoder{
		logger:      logger,
		schema:      s,
		columnNames: s.MappedColumns(),
		tableName:   pgsql.QuoteQualifiedIdentifier(s.TableName()),
	}, nil
}

// EncodeRow builds one value tuple literal in the fixed column
// order (time, <mapped columns in schema order>, extra). Every
// mapped column contributes exactly one position; values that are
// absent or cannot be coerced contribute the DEFAULT sentinel and
// stay available for the extra column. The record itself is never
// modified.
func (re *RowEncoder) EncodeRow(
	eventTime time.Time, rec record.Record,
) string {

	builder := strings.Builder{}
	builder.WriteString("(")
	builder.WriteString(pgsql.QuoteLiteral(eventTime.UTC().Format(timestampFormat)))

	mapped := make(map[string]struct{}, len(re.columnNames))
	for _, columnName := range re.columnNames {
		builder.WriteString(",")

		value, present := rec[columnName]
		if !present {
			builder.WriteString(pgsql.DefaultValue)
			continue
		}

		columnType, _ := re.schema.TypeOf(columnName)
		literal, ok := Coerce(value, columnType)
		if !ok {
			re.logger.Warnf(
				"value of kind %s cannot be coerced to %s column '%s', keeping it in '%s'",
				value.Kind(), columnType.Kind, columnName, re.schema.ExtraColumn(),
			)
			builder.WriteString(pgsql.DefaultValue)
			continue
		}

		mapped[columnName] = struct{}{}
		builder.WriteString(literal)
	}

	leftover := make(map[string]record.Value, len(rec)-len(mapped))
	for property, value := range rec {
		if _, consumed := mapped[property]; !consumed {
			leftover[property] = value
		}
	}

	payload, err := record.EncodeJSON(record.MappingValue(leftover))
	if err != nil {
		re.logger.Warnf("failed to serialize leftover properties: %s", err.Error())
		payload = "{}"
	}

	builder.WriteString(",")
	builder.WriteString(pgsql.QuoteLiteral(payload))
	builder.WriteString(")")
	return builder.String()
}

// EncodeBatch joins the given tuples into one multi-row INSERT
// statement against the encoder's table.
func (re *RowEncoder) EncodeBatch(
	tuples []string,
) string {

	return fmt.Sprintf(
		"INSERT INTO %s %s VALUES %s",
		re.tableName, re.schema.InsertColumnList(), strings.Join(tuples, ","),
	)
}
