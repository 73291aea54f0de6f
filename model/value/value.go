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

// Package value holds numeric literals as they appear in the exposition
// format. The verbatim spelling is kept alongside the parsed float so that
// re-encoding a parsed document is lossless.
package value

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Kind discriminates the forms a numeric literal can take.
type Kind int

const (
	Finite Kind = iota
	PosInf
	NegInf
	NaN
)

func (k Kind) String() string {
	switch k {
	case Finite:
		return "finite"
	case PosInf:
		return "+Inf"
	case NegInf:
		return "-Inf"
	case NaN:
		return "NaN"
	}
	return "unknown"
}

// Number is a numeric literal from a sample value, timestamp or exemplar.
// Text holds the exact spelling found in the input.
type Number struct {
	Kind  Kind
	Text  string
	Float float64
}

// ErrUnsupportedCharacter is returned for spellings that strconv would
// accept but the exposition format does not (underscores, hex floats).
var ErrUnsupportedCharacter = errors.New("unsupported character in float")

// ErrMissingIntegerDigits is returned for a decimal starting with the
// point (".5"), which strconv accepts but the exposition format does not.
var ErrMissingIntegerDigits = errors.New("expected digit before the decimal point")

// Parse decodes a numeric token. Valid forms are a decimal number with at
// least one integer digit and optional fraction and exponent, a signed
// case-insensitive "inf" or "infinity", and an unsigned case-insensitive
// "nan".
func Parse(s string) (Number, error) {
	// Go's float parser is a superset of the format grammar. Reject the
	// spellings it accepts that the format does not.
	if strings.ContainsAny(s, "_xX") {
		return Number{}, ErrUnsupportedCharacter
	}
	digits := s
	if len(digits) > 0 && (digits[0] == '+' || digits[0] == '-') {
		digits = digits[1:]
	}
	if len(digits) > 0 && digits[0] == '.' {
		return Number{}, ErrMissingIntegerDigits
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, err
	}
	n := Number{Kind: Finite, Text: s, Float: f}
	switch {
	case math.IsNaN(f):
		n.Kind = NaN
	case math.IsInf(f, +1):
		n.Kind = PosInf
	case math.IsInf(f, -1):
		n.Kind = NegInf
	}
	return n, nil
}

// String returns the verbatim spelling of the literal.
func (n Number) String() string { return n.Text }

// IsFinite returns whether the literal is a finite real number.
func (n Number) IsFinite() bool { return n.Kind == Finite }

// Equal compares two literals including their spelling. Two NaNs with the
// same spelling are equal even though their floats are not.
func (n Number) Equal(o Number) bool {
	if n.Kind != o.Kind || n.Text != o.Text {
		return false
	}
	if n.Kind == NaN {
		return true
	}
	return n.Float == o.Float
}
