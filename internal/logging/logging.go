/*
Copyright 2025 The jobctl Authors

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

// Package logging configures the project-wide logr logger backed by zap.
package logging

import (
	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	ctrl "sigs.k8s.io/controller-runtime"
	crzap "sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// logr verbosity levels used across the project. INFO is always emitted,
// DEBUG and TRACE are enabled by raising the configured verbosity.
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// Setup installs the global logger. verbosity enables logr V-levels up to
// and including the given value; development switches to the human-readable
// console encoder.
func Setup(verbosity int, development bool) logr.Logger {
	logger := crzap.New(
		crzap.UseDevMode(development),
		crzap.Level(zapcore.Level(-verbosity)),
	)
	ctrl.SetLogger(logger)
	return logger
}

// NewTestLogger installs a development-mode logger at TRACE verbosity so
// test output carries every log line. Intended for suite setup.
func NewTestLogger() logr.Logger {
	return Setup(TRACE, true)
}
