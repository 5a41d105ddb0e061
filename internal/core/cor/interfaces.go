// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor (Chain of Responsibility) provides the building blocks every
// orchestration pipeline is assembled from. An upload or an edit dispatch is
// a Chain of small Commands that share one Context: each command reads what
// it needs from the context, performs a single step against the network or
// the filesystem, and writes its result (or its error) back.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys a BaseChain uses to pipe the output of one
// command into the input of the next.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state of one pipeline execution.
type Context interface {
	// SetContext replaces the Go context carried by the pipeline. Chains use
	// it to nest command spans under the chain span.
	SetContext(context context.Context)
	GetContext() context.Context

	// Add stores a value and returns the Context for chaining.
	Add(key string, value interface{}) Context
	Get(key string) interface{}
	Remove(key string)

	// AddError records a failure under the name of the command that produced
	// it. Errors keep their insertion order.
	AddError(key string, err error)
	GetErrors() map[string]error
	HasErrors() bool
	// FirstError returns the earliest recorded error, or nil.
	FirstError() error

	// AddTempFile registers a file that must be removed when the pipeline is
	// closed, for example a partially written download.
	AddTempFile(file string)
	GetTempFiles() []string
	// Close removes all registered temporary files.
	Close()
}

// Executable is anything with a body that runs against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is one atomic pipeline step.
type Command interface {
	Executable

	GetName() string
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable is the precondition check a chain performs before Execute.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands and is itself a Command, so
// chains nest.
type Chain interface {
	Command

	// ContinueOnFailure keeps the chain running after a command records an
	// error. The default is to stop at the first failure.
	ContinueOnFailure(bool) Chain
	AddCommand(command Command) Chain
}
