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

package config

import (
	"os"
	"reflect"
	"strings"
	"time"
)

type PostgreSQLConfig struct {
	Connection string `toml:"connection" yaml:"connection"`
	Password   string `toml:"password" yaml:"password"`
}

type SinkConfig struct {
	Table        string       `toml:"table" yaml:"table"`
	TimeColumn   string       `toml:"timecolumn" yaml:"timecolumn"`
	ExtraColumn  string       `toml:"extracolumn" yaml:"extracolumn"`
	TimeProperty string       `toml:"timeproperty" yaml:"timeproperty"`
	Filter       FilterConfig `toml:"filter" yaml:"filter"`
}

type FilterConfig struct {
	Condition    string `toml:"condition" yaml:"condition"`
	DefaultValue *bool  `toml:"default" yaml:"default"`
}

type BatchConfig struct {
	MaxRows       int           `toml:"maxrows" yaml:"maxrows"`
	MaxSize       string        `toml:"maxsize" yaml:"maxsize"`
	FlushInterval time.Duration `toml:"flushinterval" yaml:"flushinterval"`
	MaxRetries    uint          `toml:"maxretries" yaml:"maxretries"`
	QueueLength   int           `toml:"queuelength" yaml:"queuelength"`
}

type StatsConfig struct {
	Enabled        *bool `toml:"enabled" yaml:"enabled"`
	Port           int   `toml:"port" yaml:"port"`
	RuntimeEnabled *bool `toml:"runtime" yaml:"runtime"`
}

type LoggerConfig struct {
	Level   string                     `toml:"level" yaml:"level"`
	Outputs LoggerOutputConfig         `toml:"outputs" yaml:"outputs"`
	Loggers map[string]SubLoggerConfig `toml:"loggers" yaml:"loggers"`
}

type LoggerOutputConfig struct {
	Console LoggerConsoleConfig `toml:"console" yaml:"console"`
	File    LoggerFileConfig    `toml:"file" yaml:"file"`
}

type LoggerConsoleConfig struct {
	Enabled *bool `toml:"enabled" yaml:"enabled"`
}

type LoggerFileConfig struct {
	Enabled     *bool   `toml:"enabled" yaml:"enabled"`
	Path        string  `toml:"path" yaml:"path"`
	Rotate      *bool   `toml:"rotate" yaml:"rotate"`
	MaxSize     *string `toml:"maxsize" yaml:"maxsize"`
	MaxDuration *int    `toml:"maxduration" yaml:"maxduration"`
	Compress    bool    `toml:"compress" yaml:"compress"`
}

type SubLoggerConfig struct {
	Level   *string            `toml:"level" yaml:"level"`
	Outputs LoggerOutputConfig `toml:"outputs" yaml:"outputs"`
}

type Config struct {
	PostgreSQL PostgreSQLConfig `toml:"postgresql" yaml:"postgresql"`
	Sink       SinkConfig       `toml:"sink" yaml:"sink"`
	Batch      BatchConfig      `toml:"batch" yaml:"batch"`
	Stats      StatsConfig      `toml:"stats" yaml:"stats"`
	Logging    LoggerConfig     `toml:"logging" yaml:"logging"`
}

// GetOrDefault reads a property from the configuration by its
// canonical dotted name, letting a matching environment variable
// take precedence over the configuration file.
func GetOrDefault[V any](
	config *Config, canonicalProperty string, defaultValue V,
) V {

	if env, found := findEnvProperty(canonicalProperty, defaultValue); found {
		return env
	}

	properties := strings.Split(canonicalProperty, ".")

	element := reflect.ValueOf(*config)
	for _, property := range properties {
		if e, ok := findProperty(element, property); ok {
			element = e
		} else {
			return defaultValue
		}
	}

	if !element.IsZero() &&
		!(element.Kind() == reflect.Ptr && element.IsNil()) {

		if element.Kind() == reflect.Ptr {
			element = element.Elem()
		}

		return element.Convert(reflect.TypeOf(defaultValue)).Interface().(V)
	}
	return defaultValue
}

func findEnvProperty[V any](
	canonicalProperty string, defaultValue V,
) (V, bool) {

	t := reflect.TypeOf(defaultValue)

	envVarName := strings.ToUpper(canonicalProperty)
	envVarName = strings.ReplaceAll(envVarName, "_", "__")
	envVarName = strings.ReplaceAll(envVarName, ".", "_")
	if val, ok := os.LookupEnv(envVarName); ok {
		v := reflect.ValueOf(val)
		if !v.Type().ConvertibleTo(t) {
			return defaultValue, false
		}
		cv := v.Convert(t)
		if !cv.IsZero() &&
			!(cv.Kind() == reflect.Ptr && cv.IsNil()) {
			return cv.Interface().(V), true
		}
	}
	return defaultValue, false
}

func findProperty(
	element reflect.Value, property string,
) (reflect.Value, bool) {

	t := element.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}

		if f.Tag.Get("toml") == property {
			return element.Field(i), true
		}
	}
	return reflect.Value{}, false
}
