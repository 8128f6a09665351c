// Copyright (c) VoteFlow Authors.
// Licensed under the MIT License.

// Package telemetry wires the OpenTelemetry SDK for the voting engine.
// When telemetry is disabled the global providers stay noop and no
// exporter connections are made, so voting sessions still create spans
// but they cost nothing and go nowhere.
package telemetry
