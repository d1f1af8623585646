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

package pgsql

import (
	"github.com/lib/pq"
	"github.com/samber/lo"
	"strings"
)

// DefaultValue is the sentinel instructing PostgreSQL to apply
// the column's configured default instead of an explicit literal.
// It must appear unquoted in the value tuple.
const DefaultValue = "DEFAULT"

// QuoteIdentifier quotes a single identifier (column, type or
// unqualified table name) for safe interpolation into a statement.
// Identifier quoting and literal quoting use distinct escaping
// rules and must never be mixed up.
func QuoteIdentifier(
	name string,
) string {

	return pq.QuoteIdentifier(name)
}

// QuoteQualifiedIdentifier quotes a possibly schema-qualified
// name, quoting every dot-separated part on its own.
func QuoteQualifiedIdentifier(
	name string,
) string {

	parts := strings.Split(name, ".")
	return strings.Join(
		lo.Map(parts, func(part string, _ int) string {
			return pq.QuoteIdentifier(part)
		}),
		".",
	)
}

// QuoteLiteral quotes an arbitrary string value for use as a SQL
// literal. Backslash-carrying values are emitted in PostgreSQL's
// escape-string form.
func QuoteLiteral(
	literal string,
) string {

	return pq.QuoteLiteral(literal)
}
