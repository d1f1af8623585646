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
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_Value_Of_Conversions(
	t *testing.T,
) {

	testCases := []struct {
		name         string
		input        any
		expectedKind Kind
	}{
		{name: "nil", input: nil, expectedKind: Null},
		{name: "bool", input: true, expectedKind: Boolean},
		{name: "float64", input: 13.37, expectedKind: Number},
		{name: "int", input: 42, expectedKind: Number},
		{name: "uint64", input: uint64(42), expectedKind: Number},
		{name: "string", input: "foo", expectedKind: String},
		{name: "slice", input: []any{1.0, "two"}, expectedKind: Sequence},
		{name: "map", input: map[string]any{"env": "production"}, expectedKind: Mapping},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expectedKind, Of(testCase.input).Kind())
		})
	}
}

func Test_Value_Zero_Value_Is_Null(
	t *testing.T,
) {

	var v Value
	assert.Equal(t, true, v.IsNull())
	assert.Equal(t, Null, v.Kind())
}

func Test_Value_As_Interface_Round_Trip(
	t *testing.T,
) {

	original := map[string]any{
		"hostname": "node0123",
		"pid":      8842.0,
		"alive":    true,
		"tags":     []any{"edge", "eu-west"},
		"meta":     map[string]any{"env": "production"},
	}

	assert.Equal(t, original, Of(original).AsInterface())
}

func Test_Encode_JSON_Sorts_Mapping_Keys(
	t *testing.T,
) {

	value := MappingValue(map[string]Value{
		"meta":     MappingValue(map[string]Value{"env": StringValue("production")}),
		"hostname": StringValue("node0123"),
	})

	document, err := EncodeJSON(value)
	assert.NoError(t, err)
	assert.Equal(t, `{"hostname":"node0123","meta":{"env":"production"}}`, document)
}

func Test_Parse_Record(
	t *testing.T,
) {

	rec, err := Parse([]byte(`{"severity":"notice","pid":8842,"alive":true,"tags":["a"],"meta":{"env":"dev"},"gone":null}`))
	assert.NoError(t, err)

	assert.Equal(t, String, rec["severity"].Kind())
	assert.Equal(t, "notice", rec["severity"].Str())
	assert.Equal(t, Number, rec["pid"].Kind())
	assert.Equal(t, 8842.0, rec["pid"].Num())
	assert.Equal(t, Boolean, rec["alive"].Kind())
	assert.Equal(t, Sequence, rec["tags"].Kind())
	assert.Equal(t, Mapping, rec["meta"].Kind())
	assert.Equal(t, Null, rec["gone"].Kind())
}

func Test_Parse_Record_Rejects_Non_Object(
	t *testing.T,
) {

	_, err := Parse([]byte(`["not","an","object"]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"broken":`))
	assert.Error(t, err)
}

func Test_Record_Without_Leaves_Receiver_Untouched(
	t *testing.T,
) {

	rec := FromMap(map[string]any{
		"timestamp": "2019-10-10T10:01:20.1234Z",
		"message":   "Starting up...",
	})

	stripped := rec.Without("timestamp")
	assert.Len(t, stripped, 1)
	assert.Len(t, rec, 2)

	_, present := stripped["timestamp"]
	assert.Equal(t, false, present)

	// Removing an absent property is a no-op
	same := rec.Without("unknown")
	assert.Len(t, same, 2)
}
