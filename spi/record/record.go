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

// Record is one semi-structured log record, an unordered mapping
// from property name to dynamically typed value. The row encoder
// treats records as read-only; ownership stays with the producer.
type Record map[string]Value

// Parse decodes a single JSON document into a Record. The top
// level element must be a JSON object.
func Parse(
	data []byte,
) (Record, error) {

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, errors.Wrap(err, 0)
	}

	rec := make(Record, len(generic))
	for key, value := range generic {
		rec[key] = Of(value)
	}
	return rec, nil
}

// FromMap converts a plain property map into a Record.
func FromMap(
	values map[string]any,
) Record {

	rec := make(Record, len(values))
	for key, value := range values {
		rec[key] = Of(value)
	}
	return rec
}

// AsInterface unwraps the Record into plain Go types.
func (r Record) AsInterface() map[string]any {
	mapping := make(map[string]any, len(r))
	for key, value := range r {
		mapping[key] = value.AsInterface()
	}
	return mapping
}

// Without returns a shallow copy of the Record with the given
// property removed. The receiver is left untouched.
func (r Record) Without(
	property string,
) Record {

	if _, present := r[property]; !present {
		return r
	}

	rec := make(Record, len(r)-1)
	for key, value := range r {
		if key != property {
			rec[key] = value
		}
	}
	return rec
}
