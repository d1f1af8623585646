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

// ColumnKind is the closed set of column type tags a destination
// column can resolve to.
type ColumnKind int8

const (
	Timestamp ColumnKind = iota
	Text
	Boolean
	Integer
	Float
	Json
	Enum
)

func (ck ColumnKind) String() string {
	switch ck {
	case Timestamp:
		return "timestamp"
	case Text:
		return "text"
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Json:
		return "json"
	case Enum:
		return "enum"
	}
	return "unknown"
}

// ColumnType is a resolved column type. Enum columns additionally
// carry the full list of legal labels discovered from pg_enum; a
// value is only accepted for an enum column when it exactly
// matches one of these labels.
type ColumnType struct {
	Kind       ColumnKind
	EnumLabels []string
}

// EnumCatalog maps fully qualified enum type names
// (schema.typename) to their labels in catalog order. It is only
// consumed while a Schema is built and discarded afterwards.
type EnumCatalog map[string][]string

// builtinDescriptors is the fixed mapping from the catalog's
// normalized type descriptor to the column kind. The source
// strings are matched exactly as information_schema reports them.
var builtinDescriptors = map[string]ColumnKind{
	"timestamp with time zone":    Timestamp,
	"timestamp without time zone": Timestamp,
	"text":                        Text,
	"character varying":           Text,
	"character":                   Text,
	"boolean":                     Boolean,
	"smallint":                    Integer,
	"integer":                     Integer,
	"bigint":                      Integer,
	"decimal":                     Float,
	"numeric":                     Float,
	"real":                        Float,
	"double precision":            Float,
	"json":                        Json,
	"jsonb":                       Json,
}

// ResolveDescriptor maps a normalized type descriptor to its
// ColumnType. Descriptors of built-in types resolve through the
// fixed table, anything else is looked up as a fully qualified
// enum type name. Returns false when the descriptor is neither, in
// which case the column stays unresolved and must be skipped.
func ResolveDescriptor(
	descriptor string, enums EnumCatalog,
) (ColumnType, bool) {

	if kind, present := builtinDescriptors[descriptor]; present {
		return ColumnType{Kind: kind}, true
	}
	if labels, present := enums[descriptor]; present {
		return ColumnType{Kind: Enum, EnumLabels: labels}, true
	}
	return ColumnType{}, false
}
