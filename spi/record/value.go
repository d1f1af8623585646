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

package record

import (
	"github.com/go-errors/errors"
	"github.com/goccy/go-json"
)

// Kind is the closed tag of a Value. Record properties are
// schema-free, every value is one of these six variants.
type Kind int8

const (
	Null Kind = iota
	Boolean
	Number
	String
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	}
	return "unknown"
}

// Value is a single dynamically typed record property. The zero
// value is the null variant.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	str     string
	seq     []Value
	mapping map[string]Value
}

func NullValue() Value {
	return Value{kind: Null}
}

func BoolValue(
	value bool,
) Value {

	return Value{kind: Boolean, boolean: value}
}

func NumberValue(
	value float64,
) Value {

	return Value{kind: Number, number: value}
}

func StringValue(
	value string,
) Value {

	return Value{kind: String, str: value}
}

func SequenceValue(
	values ...Value,
) Value {

	return Value{kind: Sequence, seq: values}
}

func MappingValue(
	values map[string]Value,
) Value {

	return Value{kind: Mapping, mapping: values}
}

// Of converts an arbitrary Go value (as produced by a generic
// JSON decode) into its tagged Value representation. Unsupported
// Go types degrade to their string representation via JSON
// round-tripping and, failing that, to null.
func Of(
	value any,
) Value {

	switch v := value.(type) {
	case nil:
		return NullValue()
	case bool:
		return BoolValue(v)
	case float64:
		return NumberValue(v)
	case float32:
		return NumberValue(float64(v))
	case int:
		return NumberValue(float64(v))
	case int8:
		return NumberValue(float64(v))
	case int16:
		return NumberValue(float64(v))
	case int32:
		return NumberValue(float64(v))
	case int64:
		return NumberValue(float64(v))
	case uint:
		return NumberValue(float64(v))
	case uint8:
		return NumberValue(float64(v))
	case uint16:
		return NumberValue(float64(v))
	case uint32:
		return NumberValue(float64(v))
	case uint64:
		return NumberValue(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return NumberValue(f)
		}
		return StringValue(v.String())
	case string:
		return StringValue(v)
	case []any:
		seq := make([]Value, 0, len(v))
		for _, element := range v {
			seq = append(seq, Of(element))
		}
		return Value{kind: Sequence, seq: seq}
	case map[string]any:
		mapping := make(map[string]Value, len(v))
		for key, element := range v {
			mapping[key] = Of(element)
		}
		return MappingValue(mapping)
	case Value:
		return v
	}

	if data, err := json.Marshal(value); err == nil {
		var generic any
		if err := json.Unmarshal(data, &generic); err == nil {
			return Of(generic)
		}
	}
	return NullValue()
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == Null
}

func (v Value) Bool() bool {
	return v.boolean
}

func (v Value) Num() float64 {
	return v.number
}

func (v Value) Str() string {
	return v.str
}

func (v Value) Seq() []Value {
	return v.seq
}

func (v Value) Map() map[string]Value {
	return v.mapping
}

// AsInterface unwraps the Value back into plain Go types,
// suitable for generic JSON encoding or expression evaluation.
func (v Value) AsInterface() any {
	switch v.kind {
	case Boolean:
		return v.boolean
	case Number:
		return v.number
	case String:
		return v.str
	case Sequence:
		seq := make([]any, 0, len(v.seq))
		for _, element := range v.seq {
			seq = append(seq, element.AsInterface())
		}
		return seq
	case Mapping:
		mapping := make(map[string]any, len(v.mapping))
		for key, element := range v.mapping {
			mapping[key] = element.AsInterface()
		}
		return mapping
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.AsInterface())
}

// EncodeJSON serializes the Value as a compact JSON document.
func EncodeJSON(
	v Value,
) (string, error) {

	data, err := json.Marshal(v.AsInterface())
	if err != nil {
		return "", errors.Wrap(err, 0)
	}
	return string(data), nil
}
