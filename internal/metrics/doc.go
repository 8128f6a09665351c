// Copyright (c) VoteFlow Authors.
// Licensed under the MIT License.

// Package metrics provides internal Prometheus metrics collection for
// voting sessions. This package is internal and should not be imported
// by external projects.
package metrics
