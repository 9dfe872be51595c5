/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a development console logger, at debug level when
// DEBUG_LOGGING is set.
func NewLogger(config *TestConfig) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	zc.Level = zap.NewAtomicLevelAt(logLevel(config))

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return logger, nil
}

// NewWriterLogger returns a console logger that writes to w, used to route
// output into a test framework's writer.
func NewWriterLogger(w io.Writer, config *TestConfig) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), logLevel(config))

	return zap.New(core)
}

func logLevel(config *TestConfig) zapcore.Level {
	if config != nil && config.DebugLogging {
		return zapcore.DebugLevel
	}

	return zapcore.InfoLevel
}
