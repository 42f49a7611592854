// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

// Package logger provides the process-wide zap logger used across the
// a2e-lang toolchain. Library packages accept an injected *zap.Logger and
// fall back to this one when none is supplied.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	// Logger is the global logger for the toolchain.
	Logger *zap.Logger
	// mu protects Logger from concurrent access
	mu sync.RWMutex
	// initialized tracks whether logger has been initialized
	initialized bool
)

// InitLogger initializes the global logger safely to prevent race conditions.
func InitLogger() {
	mu.Lock()
	defer mu.Unlock()

	if !initialized || Logger == nil {
		var err error
		Logger, err = zap.NewProduction()
		if err != nil {
			panic(err)
		}
		initialized = true
	}
}

// InitDevelopmentLogger switches the global logger to a human-readable
// development configuration. Used by the CLI when --verbose is set.
func InitDevelopmentLogger() {
	mu.Lock()
	defer mu.Unlock()

	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	Logger = l
	initialized = true
}

// GetLogger returns the global logger, initializing it if necessary.
func GetLogger() *zap.Logger {
	mu.RLock()
	if initialized && Logger != nil {
		defer mu.RUnlock()
		return Logger
	}
	mu.RUnlock()

	InitLogger()

	mu.RLock()
	defer mu.RUnlock()
	return Logger
}

// ResetLogger resets the logger for testing purposes.
// This should only be used in tests.
func ResetLogger() {
	mu.Lock()
	defer mu.Unlock()

	if Logger != nil {
		Logger.Sync() // Flush any pending log entries
	}
	Logger = nil
	initialized = false
}
