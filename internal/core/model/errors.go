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

package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the orchestrator surfaces to a caller.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNetwork
	KindFileSystem
	KindPermission
	KindState
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNetwork:
		return "NetworkError"
	case KindFileSystem:
		return "FileSystemError"
	case KindPermission:
		return "PermissionError"
	case KindState:
		return "StateError"
	default:
		return "UnknownError"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its own kind.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrFileSystem = &Error{Kind: KindFileSystem}
	ErrPermission = &Error{Kind: KindPermission}
	ErrState      = &Error{Kind: KindState}
)

// Error is a classified failure. Message is human readable and safe to show
// to the user; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so that errors.Is(err, ErrNetwork) works for any
// network failure regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, op string, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: msg, Err: err}
}

// ValidationError reports input the caller should correct.
func ValidationError(op string, msg string) *Error {
	return newError(KindValidation, op, msg, nil)
}

// NetworkError reports a failed or unsuccessful edit service exchange.
func NetworkError(op string, msg string, err error) *Error {
	return newError(KindNetwork, op, msg, err)
}

// FileSystemError reports a failure reading or writing local files or storage.
func FileSystemError(op string, msg string, err error) *Error {
	return newError(KindFileSystem, op, msg, err)
}

// PermissionError reports media the process may not read.
func PermissionError(op string, msg string, err error) *Error {
	return newError(KindPermission, op, msg, err)
}

// StateError reports an operation that is not allowed right now.
func StateError(op string, msg string) *Error {
	return newError(KindState, op, msg, nil)
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage returns the text that should be shown to the user for err.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
