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
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/go-errors/errors"
	spiconfig "github.com/pgship/pgship/spi/config"
	"github.com/pgship/pgship/spi/record"
)

// Filter decides per record whether it is shipped or dropped
// before batching. The record is exposed to the condition under
// the name >>record<<.
type Filter interface {
	Evaluate(rec record.Record) (bool, error)
}

func NewRecordFilter(
	config spiconfig.FilterConfig,
) (Filter, error) {

	if config.Condition == "" {
		return &acceptAllFilter{}, nil
	}

	defaultValue := true
	if config.DefaultValue != nil {
		defaultValue = *config.DefaultValue
	}

	prog, err := expr.Compile(config.Condition)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	return &recordFilter{
		defaultValue: defaultValue,
		condition:    config.Condition,
		prog:         prog,
		vm:           &vm.VM{},
	}, nil
}

type acceptAllFilter struct {
}

func (f *acceptAllFilter) Evaluate(
	_ record.Record,
) (bool, error) {

	return true, nil
}

type recordFilter struct {
	defaultValue bool
	condition    string
	prog         *vm.Program
	vm           *vm.VM
}

func (f *recordFilter) Evaluate(
	rec record.Record,
) (bool, error) {

	env := map[string]any{
		"record": rec.AsInterface(),
	}

	result, err := f.vm.Run(f.prog, env)
	if err != nil {
		return false, err
	}

	r, ok := result.(bool)
	if !ok {
		return false, errors.Errorf("result of filter «%s» isn't a boolean", f.condition)
	}

	if r {
		return f.defaultValue, nil
	}
	return !f.defaultValue, nil
}
