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

package filtering

import (
	spiconfig "github.com/pgship/pgship/spi/config"
	"github.com/pgship/pgship/spi/record"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_Empty_Condition_Accepts_Everything(
	t *testing.T,
) {

	filter, err := NewRecordFilter(spiconfig.FilterConfig{})
	assert.NoError(t, err)

	accepted, err := filter.Evaluate(record.Record{})
	assert.NoError(t, err)
	assert.Equal(t, true, accepted)
}

func Test_Record_Filter_Condition(
	t *testing.T,
) {

	filter, err := NewRecordFilter(spiconfig.FilterConfig{
		Condition: `record.severity != "debug"`,
	})
	assert.NoError(t, err)

	accepted, err := filter.Evaluate(record.FromMap(map[string]any{
		"severity": "notice",
	}))
	assert.NoError(t, err)
	assert.Equal(t, true, accepted)

	accepted, err = filter.Evaluate(record.FromMap(map[string]any{
		"severity": "debug",
	}))
	assert.NoError(t, err)
	assert.Equal(t, false, accepted)
}

func Test_Record_Filter_Default_Value_Inverts_Result(
	t *testing.T,
) {

	filter, err := NewRecordFilter(spiconfig.FilterConfig{
		Condition:    `record.severity == "debug"`,
		DefaultValue: lo.ToPtr(false),
	})
	assert.NoError(t, err)

	accepted, err := filter.Evaluate(record.FromMap(map[string]any{
		"severity": "debug",
	}))
	assert.NoError(t, err)
	assert.Equal(t, false, accepted)

	accepted, err = filter.Evaluate(record.FromMap(map[string]any{
		"severity": "notice",
	}))
	assert.NoError(t, err)
	assert.Equal(t, true, accepted)
}

func Test_Record_Filter_Invalid_Condition(
	t *testing.T,
) {

	_, err := NewRecordFilter(spiconfig.FilterConfig{
		Condition: `record.severity != `,
	})
	assert.Error(t, err)
}

func Test_Record_Filter_Non_Boolean_Result(
	t *testing.T,
) {

	filter, err := NewRecordFilter(spiconfig.FilterConfig{
		Condition: `record.severity`,
	})
	assert.NoError(t, err)

	_, err = filter.Evaluate(record.FromMap(map[string]any{
		"severity": "notice",
	}))
	assert.Error(t, err)
}
