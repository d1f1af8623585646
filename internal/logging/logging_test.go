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

package logging

import (
	"github.com/gookit/slog"
	spiconfig "github.com/pgship/pgship/spi/config"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"path/filepath"
	"testing"
)

func Test_Name2Level(
	t *testing.T,
) {

	testCases := []struct {
		name          string
		expectedLevel slog.Level
	}{
		{name: "panic", expectedLevel: slog.PanicLevel},
		{name: "fatal", expectedLevel: slog.FatalLevel},
		{name: "err", expectedLevel: slog.ErrorLevel},
		{name: "error", expectedLevel: slog.ErrorLevel},
		{name: "warn", expectedLevel: slog.WarnLevel},
		{name: "warning", expectedLevel: slog.WarnLevel},
		{name: "notice", expectedLevel: slog.NoticeLevel},
		{name: "verbose", expectedLevel: VerboseLevel},
		{name: "debug", expectedLevel: slog.DebugLevel},
		{name: "trace", expectedLevel: slog.TraceLevel},
		{name: "INFO", expectedLevel: slog.InfoLevel},
		{name: "anything else", expectedLevel: slog.InfoLevel},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expectedLevel, Name2Level(testCase.name))
		})
	}
}

func Test_New_Logger_Without_Initialization(
	t *testing.T,
) {

	logger, err := NewLogger("TestLogger")
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	// Must not panic before InitializeLogging was called
	logger.Debugf("debug message %d", 1)
	logger.Infof("info message")
}

func Test_New_File_Handler(
	t *testing.T,
) {

	config := spiconfig.LoggerFileConfig{
		Enabled: lo.ToPtr(true),
		Path:    filepath.Join(t.TempDir(), "pgship.log"),
		Rotate:  lo.ToPtr(true),
		MaxSize: lo.ToPtr("1KB"),
	}

	found, fileHandler, err := newFileHandler(config)
	assert.NoError(t, err)
	assert.Equal(t, true, found)
	assert.NotNil(t, fileHandler)

	// Handlers are cached per path
	_, cached, err := newFileHandler(config)
	assert.NoError(t, err)
	assert.Same(t, fileHandler, cached)
}

func Test_New_File_Handler_Disabled(
	t *testing.T,
) {

	found, fileHandler, err := newFileHandler(spiconfig.LoggerFileConfig{})
	assert.NoError(t, err)
	assert.Equal(t, false, found)
	assert.Nil(t, fileHandler)
}
