// Copyright The OpenMetrics Parser Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package textparse

import "fmt"

// ErrorKind discriminates the ways a parse can fail.
type ErrorKind int

const (
	// ErrUnexpectedChar marks a character the grammar forbids at its
	// position, or a missing required character.
	ErrUnexpectedChar ErrorKind = iota
	// ErrInvalidNumber marks a numeric token that is neither a real
	// number, a signed infinity, nor NaN.
	ErrInvalidNumber
	// ErrInvalidMetricType marks a TYPE line with an unrecognized type.
	ErrInvalidMetricType
	// ErrMissingSentinel marks input that ended without a # EOF line.
	ErrMissingSentinel
	// ErrTrailingContent marks content found after the # EOF line.
	ErrTrailingContent
	// ErrMalformedLabelSet marks unbalanced braces, a missing "=" or
	// quote, or an invalid label name inside a label set.
	ErrMalformedLabelSet
	// ErrDuplicateLabel marks a label name occurring twice in one label set.
	ErrDuplicateLabel
	// ErrDuplicateHelp marks a second HELP line for one metric family.
	ErrDuplicateHelp
	// ErrDuplicateType marks a second TYPE line for one metric family.
	ErrDuplicateType
	// ErrDuplicateUnit marks a second UNIT line for one metric family.
	ErrDuplicateUnit
	// ErrInterleavedFamily marks a metric family resuming after another
	// family has begun.
	ErrInterleavedFamily
	// ErrUnsupportedExemplar marks an exemplar on a series whose name
	// does not admit one.
	ErrUnsupportedExemplar
	// ErrEmptyFamily marks a grouping run that produced a family with
	// neither descriptors nor samples. The grouping automaton only opens
	// families on a descriptor or sample line, so hitting this is an
	// internal consistency failure, not bad input.
	ErrEmptyFamily
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedChar:
		return "unexpected character"
	case ErrInvalidNumber:
		return "invalid number"
	case ErrInvalidMetricType:
		return "invalid metric type"
	case ErrMissingSentinel:
		return "missing EOF sentinel"
	case ErrTrailingContent:
		return "trailing content"
	case ErrMalformedLabelSet:
		return "malformed label set"
	case ErrDuplicateLabel:
		return "duplicate label"
	case ErrDuplicateHelp:
		return "duplicate HELP"
	case ErrDuplicateType:
		return "duplicate TYPE"
	case ErrDuplicateUnit:
		return "duplicate UNIT"
	case ErrInterleavedFamily:
		return "interleaved metric family"
	case ErrUnsupportedExemplar:
		return "unsupported exemplar"
	case ErrEmptyFamily:
		return "empty metric family"
	}
	return "unknown"
}

// ParseError describes the first point at which a parse failed. Offset is
// a byte offset into the input, Line is 1-based.
type ParseError struct {
	Kind   ErrorKind
	Line   int
	Offset int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("line %d: %s", e.Line, msg)
}

func (e *ParseError) Unwrap() error { return e.Err }
