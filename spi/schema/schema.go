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

package schema

import (
	"fmt"
	"github.com/pgship/pgship/spi/pgsql"
	"strings"
)

// Column is one raw catalog entry for the destination table: the
// column name and its normalized type descriptor (the built-in
// type name, or the fully qualified name of a user-defined type).
type Column struct {
	Name       string
	Descriptor string
}

// ReservedColumnError reports a reserved column (time or extra)
// resolving to an incompatible type. This is a fatal configuration
// error, never a per-row failure.
type ReservedColumnError struct {
	Column     string
	Expected   ColumnKind
	Descriptor string
}

func (e *ReservedColumnError) Error() string {
	return fmt.Sprintf(
		"reserved column '%s' must be of a %s type but the table declares '%s'",
		e.Column, e.Expected, e.Descriptor,
	)
}

// Schema is the immutable mapping from destination column name to
// resolved column type, in the table's column order, excluding the
// two reserved columns. It is built once per connection and cached
// for the connection's lifetime.
type Schema struct {
	tableName   string
	timeColumn  string
	extraColumn string
	columnNames []string
	columnTypes map[string]ColumnType
	columnList  string
}

// Build constructs a Schema from the catalog's column listing and
// the discovered enum catalog. Columns whose descriptor is neither
// a recognized built-in type nor a known enum type are returned in
// the skipped list; their values always land in the extra column.
func Build(
	tableName string, columns []Column, enums EnumCatalog, timeColumn, extraColumn string,
) (*Schema, []Column, error) {

	columnNames := make([]string, 0, len(columns))
	columnTypes := make(map[string]ColumnType, len(columns))
	skipped := make([]Column, 0)

	for _, column := range columns {
		columnType, resolved := ResolveDescriptor(column.Descriptor, enums)

		switch column.Name {
		case timeColumn:
			if !resolved || columnType.Kind != Timestamp {
				return nil, nil, &ReservedColumnError{
					Column:     column.Name,
					Expected:   Timestamp,
					Descriptor: column.Descriptor,
				}
			}
			continue
		case extraColumn:
			if !resolved || columnType.Kind != Json {
				return nil, nil, &ReservedColumnError{
					Column:     column.Name,
					Expected:   Json,
					Descriptor: column.Descriptor,
				}
			}
			continue
		}

		if !resolved {
			skipped = append(skipped, column)
			continue
		}

		columnNames = append(columnNames, column.Name)
		columnTypes[column.Name] = columnType
	}

	return &Schema{
		tableName:   tableName,
		timeColumn:  timeColumn,
		extraColumn: extraColumn,
		columnNames: columnNames,
		columnTypes: columnTypes,
		columnList:  buildColumnList(timeColumn, columnNames, extraColumn),
	}, skipped, nil
}

func buildColumnList(
	timeColumn string, columnNames []string, extraColumn string,
) string {

	builder := strings.Builder{}
	builder.WriteString("(")
	builder.WriteString(pgsql.QuoteIdentifier(timeColumn))
	for _, name := range columnNames {
		builder.WriteString(",")
		builder.WriteString(pgsql.QuoteIdentifier(name))
	}
	builder.WriteString(",")
	builder.WriteString(pgsql.QuoteIdentifier(extraColumn))
	builder.WriteString(")")
	return builder.String()
}

// TableName returns the destination table name as configured,
// possibly schema qualified.
func (s *Schema) TableName() string {
	return s.tableName
}

// TimeColumn returns the name of the reserved timestamp column.
func (s *Schema) TimeColumn() string {
	return s.timeColumn
}

// ExtraColumn returns the name of the reserved catch-all column.
func (s *Schema) ExtraColumn() string {
	return s.extraColumn
}

// MappedColumns returns the mapped column names in table order.
// The returned slice is a copy.
func (s *Schema) MappedColumns() []string {
	columnNames := make([]string, len(s.columnNames))
	copy(columnNames, s.columnNames)
	return columnNames
}

// TypeOf resolves the ColumnType of a mapped column.
func (s *Schema) TypeOf(
	columnName string,
) (ColumnType, bool) {

	columnType, present := s.columnTypes[columnName]
	return columnType, present
}

// InsertColumnList returns the precomputed, identifier-quoted
// column list for the INSERT statement:
// (time, <mapped columns in table order>, extra).
func (s *Schema) InsertColumnList() string {
	return s.columnList
}
