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

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sinkingpoint/openmetrics-parser/model/exemplar"
	"github.com/sinkingpoint/openmetrics-parser/model/labels"
	"github.com/sinkingpoint/openmetrics-parser/model/value"
)

var lvalReplacer = strings.NewReplacer(
	`\"`, `"`,
	`\\`, `\`,
	`\n`, "\n",
)

// OpenMetricsParser parses samples from a byte slice of samples in the
// OpenMetrics text exposition format. It processes the input a line at a
// time and holds no state beyond the current entry, so memory usage is
// linear in the input size.
type OpenMetricsParser struct {
	b    []byte
	i    int
	line int

	atEOF bool

	// Current entry. For sample entries series holds the verbatim
	// name-plus-labelset text, offsets the metric name end followed by
	// (nameStart, nameEnd, valueStart, valueEnd) quadruples per label,
	// all absolute into b.
	start   int
	series  []byte
	offsets []int

	text  []byte
	mtype MetricType

	val   value.Number
	ts    value.Number
	hasTS bool

	eOffsets    []int
	eVal        value.Number
	eTs         value.Number
	hasExemplar bool
	hasETs      bool
}

// NewOpenMetricsParser returns a new parser of the byte slice.
func NewOpenMetricsParser(b []byte) *OpenMetricsParser {
	return &OpenMetricsParser{b: b}
}

// Series returns the bytes of the series, the timestamp if set, and the
// value of the current sample. The timestamp is converted to integer
// milliseconds.
func (p *OpenMetricsParser) Series() ([]byte, *int64, float64) {
	if p.hasTS {
		ts := int64(p.ts.Float * 1000)
		return p.series, &ts, p.val.Float
	}
	return p.series, nil, p.val.Float
}

// Number returns the value of the current sample with its verbatim
// spelling preserved.
func (p *OpenMetricsParser) Number() value.Number { return p.val }

// Timestamp returns the raw exposition timestamp (in seconds) of the
// current sample and whether one is present.
func (p *OpenMetricsParser) Timestamp() (value.Number, bool) { return p.ts, p.hasTS }

// Help returns the metric name and help text in the current entry.
func (p *OpenMetricsParser) Help() ([]byte, []byte) {
	return p.series, p.text
}

// Type returns the metric name and type in the current entry.
func (p *OpenMetricsParser) Type() ([]byte, MetricType) {
	return p.series, p.mtype
}

// Unit returns the metric name and unit in the current entry. An empty
// unit is indistinguishable from an absent one, which is what the format
// specifies.
func (p *OpenMetricsParser) Unit() ([]byte, []byte) {
	return p.series, p.text
}

// Metric writes the labels of the current sample into the passed labels.
// It returns the string from which the metric was parsed.
func (p *OpenMetricsParser) Metric(l *labels.Labels) string {
	// Copy the buffer to a string: this is only necessary for the return
	// value.
	s := string(p.series)

	*l = append(*l, labels.Label{Name: labels.MetricName, Value: s[:p.offsets[0]-p.start]})
	for i := 1; i < len(p.offsets); i += 4 {
		a := p.offsets[i] - p.start
		b := p.offsets[i+1] - p.start
		c := p.offsets[i+2] - p.start
		d := p.offsets[i+3] - p.start
		*l = append(*l, labels.Label{Name: s[a:b], Value: decodeLabelValue(s[c:d])})
	}
	l.Sort()

	return s
}

// Exemplar writes the exemplar of the current sample into the passed
// exemplar. It returns whether an exemplar exists.
func (p *OpenMetricsParser) Exemplar(e *exemplar.Exemplar) bool {
	if !p.hasExemplar {
		return false
	}
	e.Labels = make(labels.Labels, 0, len(p.eOffsets)/4)
	for i := 0; i+3 < len(p.eOffsets); i += 4 {
		name := string(p.b[p.eOffsets[i]:p.eOffsets[i+1]])
		val := decodeLabelValue(string(p.b[p.eOffsets[i+2]:p.eOffsets[i+3]]))
		e.Labels = append(e.Labels, labels.Label{Name: name, Value: val})
	}
	e.Labels.Sort()
	e.Value = p.eVal.Float
	e.HasTs = p.hasETs
	if p.hasETs {
		e.Ts = int64(p.eTs.Float * 1000)
	}
	return true
}

// ExemplarNumber returns the raw exemplar value and whether the current
// sample carries an exemplar.
func (p *OpenMetricsParser) ExemplarNumber() (value.Number, bool) {
	return p.eVal, p.hasExemplar
}

// ExemplarTimestamp returns the raw exemplar timestamp (in seconds) and
// whether one is present.
func (p *OpenMetricsParser) ExemplarTimestamp() (value.Number, bool) {
	return p.eTs, p.hasETs
}

// Position returns the line and byte offset the parser has advanced to.
func (p *OpenMetricsParser) Position() (line, offset int) {
	return p.line, p.i
}

// Next advances the parser to the next entry. It returns io.EOF when the
// # EOF sentinel has been consumed. Any error other than io.EOF is a
// *ParseError describing the first violation; the parser must not be used
// further after one.
func (p *OpenMetricsParser) Next() (Entry, error) {
	p.series = nil
	p.text = nil
	p.offsets = p.offsets[:0]
	p.eOffsets = p.eOffsets[:0]
	p.val, p.ts = value.Number{}, value.Number{}
	p.eVal, p.eTs = value.Number{}, value.Number{}
	p.hasTS = false
	p.hasExemplar = false
	p.hasETs = false

	if p.atEOF {
		return EntryInvalid, io.EOF
	}
	p.line++
	if p.i >= len(p.b) {
		return EntryInvalid, p.newError(ErrMissingSentinel, p.i, "data does not end with # EOF")
	}
	switch c := p.b[p.i]; {
	case c == '#':
		return p.parseDescriptor()
	case isMetricNameStart(c):
		return p.parseSample()
	default:
		return EntryInvalid, p.newErrorf(ErrUnexpectedChar, p.i, "%q is not a valid start of a line", string(c))
	}
}

func (p *OpenMetricsParser) parseDescriptor() (Entry, error) {
	p.i++ // "#"
	if p.i >= len(p.b) || p.b[p.i] != ' ' {
		return EntryInvalid, p.newError(ErrUnexpectedChar, p.i, `expected space after "#"`)
	}
	p.i++

	// The sentinel line terminates the document: one optional newline may
	// follow it and nothing else. A longer keyword such as "EOFfoo" is not
	// a sentinel and falls through to the keyword switch.
	if bytes.HasPrefix(p.b[p.i:], []byte("EOF")) {
		rest := p.b[p.i+3:]
		switch {
		case len(rest) == 0 || (len(rest) == 1 && rest[0] == '\n'):
			p.i = len(p.b)
			p.atEOF = true
			return EntryInvalid, io.EOF
		case rest[0] == '\n' || rest[0] == ' ':
			return EntryInvalid, p.newError(ErrTrailingContent, p.i+3, "unexpected data after # EOF")
		}
	}

	kwStart := p.i
	for p.i < len(p.b) && isAlpha(p.b[p.i]) {
		p.i++
	}
	kw := string(p.b[kwStart:p.i])
	switch kw {
	case "TYPE", "HELP", "UNIT":
	default:
		return EntryInvalid, p.newErrorf(ErrUnexpectedChar, kwStart, `expected TYPE, HELP, UNIT or EOF after "#", got %q`, kw)
	}
	if p.i >= len(p.b) || p.b[p.i] != ' ' {
		return EntryInvalid, p.newErrorf(ErrUnexpectedChar, p.i, "expected space after %s", kw)
	}
	p.i++

	nameStart := p.i
	nameEnd := consumeMetricName(p.b, p.i)
	if nameEnd == nameStart {
		return EntryInvalid, p.newErrorf(ErrUnexpectedChar, p.i, "expected metric name after %s", kw)
	}
	p.i = nameEnd
	p.series = p.b[nameStart:nameEnd]

	switch kw {
	case "TYPE":
		if p.i >= len(p.b) || p.b[p.i] != ' ' {
			return EntryInvalid, p.newError(ErrUnexpectedChar, p.i, "expected text in TYPE")
		}
		p.i++
		start := p.i
		for p.i < len(p.b) && p.b[p.i] != '\n' {
			p.i++
		}
		tok := MetricType(p.b[start:p.i])
		p.consumeNewline()
		switch tok {
		case MetricTypeCounter, MetricTypeGauge, MetricTypeHistogram,
			MetricTypeGaugeHistogram, MetricTypeSummary, MetricTypeInfo,
			MetricTypeStateset, MetricTypeUnknown:
			p.mtype = tok
		default:
			return EntryInvalid, p.newErrorf(ErrInvalidMetricType, start, "invalid metric type %q", string(tok))
		}
		return EntryType, nil

	case "HELP":
		if p.i >= len(p.b) || p.b[p.i] != ' ' {
			return EntryInvalid, p.newError(ErrUnexpectedChar, p.i, "expected text in HELP")
		}
		p.i++
		start := p.i
		for p.i < len(p.b) && p.b[p.i] != '\n' {
			p.i++
		}
		// Help text is taken verbatim: any byte but the newline is allowed
		// and no escape decoding occurs.
		p.text = p.b[start:p.i]
		p.consumeNewline()
		return EntryHelp, nil

	default: // UNIT
		// Unit text is entirely optional, and empty text means no unit.
		if p.i < len(p.b) && p.b[p.i] == ' ' {
			p.i++
			start := p.i
			for p.i < len(p.b) && isMetricNameChar(p.b[p.i]) {
				p.i++
			}
			if p.i < len(p.b) && p.b[p.i] != '\n' {
				return EntryInvalid, p.newErrorf(ErrUnexpectedChar, p.i, "%q is not a valid unit character", string(p.b[p.i]))
			}
			p.text = p.b[start:p.i]
		} else if p.i < len(p.b) && p.b[p.i] != '\n' {
			return EntryInvalid, p.newErrorf(ErrUnexpectedChar, p.i, "%q is not valid after UNIT metric name", string(p.b[p.i]))
		}
		p.consumeNewline()
		return EntryUnit, nil
	}
}

func (p *OpenMetricsParser) parseSample() (Entry, error) {
	p.start = p.i
	nameEnd := consumeMetricName(p.b, p.i)
	p.i = nameEnd
	p.offsets = append(p.offsets, nameEnd)

	if p.i < len(p.b) && p.b[p.i] == '{' {
		var err error
		if p.offsets, err = p.parseLabelSet(p.offsets, 1); err != nil {
			return EntryInvalid, err
		}
	}
	p.series = p.b[p.start:p.i]

	if p.i >= len(p.b) || p.b[p.i] != ' ' {
		return EntryInvalid, p.newError(ErrUnexpectedChar, p.i, "expected value after metric")
	}
	p.i++
	var err error
	if p.val, err = p.parseNumber(); err != nil {
		return EntryInvalid, err
	}

	if p.i < len(p.b) && p.b[p.i] == ' ' {
		p.i++
		if p.i < len(p.b) && p.b[p.i] == '#' {
			if err := p.parseExemplar(); err != nil {
				return EntryInvalid, err
			}
		} else {
			tsStart := p.i
			if p.ts, err = p.parseNumber(); err != nil {
				return EntryInvalid, err
			}
			if !p.ts.IsFinite() {
				return EntryInvalid, p.newError(ErrInvalidNumber, tsStart, "invalid timestamp")
			}
			p.hasTS = true
			if p.i < len(p.b) && p.b[p.i] == ' ' {
				p.i++
				if p.i >= len(p.b) || p.b[p.i] != '#' {
					return EntryInvalid, p.newError(ErrUnexpectedChar, p.i, "expected exemplar after timestamp")
				}
				if err := p.parseExemplar(); err != nil {
					return EntryInvalid, err
				}
			}
		}
	}

	if p.i >= len(p.b) {
		return EntryInvalid, p.newError(ErrMissingSentinel, p.i, "data does not end with # EOF")
	}
	if p.b[p.i] != '\n' {
		return EntryInvalid, p.newErrorf(ErrUnexpectedChar, p.i, "%q is not valid at the end of a sample line", string(p.b[p.i]))
	}
	p.i++
	return EntrySeries, nil
}

// parseLabelSet parses a brace-delimited label set, appending offset
// quadruples to offsets. base is the index at which quadruples start in
// offsets, used for duplicate detection.
func (p *OpenMetricsParser) parseLabelSet(offsets []int, base int) ([]int, error) {
	p.i++ // "{"
	if p.i < len(p.b) && p.b[p.i] == '}' {
		// An empty label set is equivalent to no label set at all.
		p.i++
		return offsets, nil
	}
	for {
		nameStart := p.i
		nameEnd := consumeLabelName(p.b, p.i)
		if nameEnd == nameStart {
			return nil, p.newError(ErrMalformedLabelSet, p.i, "expected label name")
		}
		p.i = nameEnd
		if p.i >= len(p.b) || p.b[p.i] != '=' {
			return nil, p.newError(ErrMalformedLabelSet, p.i, `expected "=" after label name`)
		}
		p.i++
		if p.i >= len(p.b) || p.b[p.i] != '"' {
			return nil, p.newError(ErrMalformedLabelSet, p.i, "expected label value")
		}
		p.i++
		valStart := p.i
	scan:
		for {
			if p.i >= len(p.b) || p.b[p.i] == '\n' {
				return nil, p.newError(ErrMalformedLabelSet, valStart-1, "unterminated label value")
			}
			switch p.b[p.i] {
			case '"':
				break scan
			case '\\':
				// A recognized escape consumes its follow character. A
				// dangling backslash stands for itself.
				if c := p.peek(1); c == '\\' || c == 'n' || c == '"' {
					p.i += 2
				} else {
					p.i++
				}
			default:
				p.i++
			}
		}
		valEnd := p.i
		p.i++ // closing quote
		if !utf8.Valid(p.b[valStart:valEnd]) {
			return nil, p.newError(ErrUnexpectedChar, valStart, "invalid UTF-8 label value")
		}

		name := p.b[nameStart:nameEnd]
		for j := base; j+3 < len(offsets); j += 4 {
			if bytes.Equal(p.b[offsets[j]:offsets[j+1]], name) {
				return nil, p.newErrorf(ErrDuplicateLabel, nameStart, "duplicate label name %q", string(name))
			}
		}
		offsets = append(offsets, nameStart, nameEnd, valStart, valEnd)

		if p.i >= len(p.b) {
			return nil, p.newError(ErrMalformedLabelSet, p.i, `expected "," or "}"`)
		}
		switch p.b[p.i] {
		case '}':
			p.i++
			return offsets, nil
		case ',':
			p.i++
		default:
			return nil, p.newError(ErrMalformedLabelSet, p.i, `expected "," or "}" after label value`)
		}
	}
}

// parseExemplar parses "# labelset SP number [SP timestamp]" with p.i
// positioned at the "#".
func (p *OpenMetricsParser) parseExemplar() error {
	p.i++ // "#"
	if p.i >= len(p.b) || p.b[p.i] != ' ' {
		return p.newError(ErrUnexpectedChar, p.i, `expected space after exemplar "#"`)
	}
	p.i++
	if p.i >= len(p.b) || p.b[p.i] != '{' {
		return p.newError(ErrMalformedLabelSet, p.i, "expected label set in exemplar")
	}
	var err error
	if p.eOffsets, err = p.parseLabelSet(p.eOffsets, 0); err != nil {
		return err
	}

	// Exemplars only attach to counter totals and histogram buckets.
	name := p.b[p.start:p.offsets[0]]
	if !bytes.HasSuffix(name, []byte("_total")) && !bytes.HasSuffix(name, []byte("_bucket")) {
		return p.newErrorf(ErrUnsupportedExemplar, p.start, "metric name %s does not support exemplars", string(name))
	}

	if p.i >= len(p.b) || p.b[p.i] != ' ' {
		return p.newError(ErrUnexpectedChar, p.i, "expected value after exemplar labels")
	}
	p.i++
	if p.eVal, err = p.parseNumber(); err != nil {
		return err
	}
	p.hasExemplar = true

	if p.i < len(p.b) && p.b[p.i] == ' ' {
		p.i++
		tsStart := p.i
		if p.eTs, err = p.parseNumber(); err != nil {
			return err
		}
		if !p.eTs.IsFinite() {
			return p.newError(ErrInvalidNumber, tsStart, "invalid exemplar timestamp")
		}
		p.hasETs = true
	}
	return nil
}

func (p *OpenMetricsParser) parseNumber() (value.Number, error) {
	start := p.i
	end := consumeToken(p.b, p.i)
	n, err := value.Parse(string(p.b[start:end]))
	if err != nil {
		return value.Number{}, p.wrapError(ErrInvalidNumber, start, err)
	}
	p.i = end
	return n, nil
}

func (p *OpenMetricsParser) consumeNewline() {
	if p.i < len(p.b) && p.b[p.i] == '\n' {
		p.i++
	}
}

func (p *OpenMetricsParser) peek(n int) byte {
	if p.i+n >= len(p.b) {
		return 0
	}
	return p.b[p.i+n]
}

func (p *OpenMetricsParser) newError(kind ErrorKind, offset int, msg string) error {
	return &ParseError{Kind: kind, Line: p.line, Offset: offset, Msg: msg}
}

func (p *OpenMetricsParser) newErrorf(kind ErrorKind, offset int, format string, args ...interface{}) error {
	return &ParseError{Kind: kind, Line: p.line, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *OpenMetricsParser) wrapError(kind ErrorKind, offset int, err error) error {
	return &ParseError{Kind: kind, Line: p.line, Offset: offset, Err: err}
}

func decodeLabelValue(v string) string {
	// The replacer causes allocations. Replace only when necessary.
	if strings.IndexByte(v, '\\') >= 0 {
		return lvalReplacer.Replace(v)
	}
	return v
}
