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

package exposition

import (
	"errors"
	"fmt"
	"io"

	"github.com/sinkingpoint/openmetrics-parser/model/labels"
	"github.com/sinkingpoint/openmetrics-parser/model/textparse"
)

// Parse parses a complete exposition payload into a Document. It fails on
// the first violation with a *textparse.ParseError and never returns a
// partial document. Parse holds no shared state and may be called
// concurrently from independent goroutines.
func Parse(b []byte) (*Document, error) {
	a := assembler{
		p:    textparse.NewOpenMetricsParser(b),
		doc:  &Document{},
		seen: map[string]struct{}{},
	}
	return a.run()
}

// assembler groups the parser's flat entry stream into metric families by
// name continuity. It tracks one open family at a time; a descriptor or
// sample naming a different family closes the current one.
type assembler struct {
	p    *textparse.OpenMetricsParser
	doc  *Document
	cur  *MetricFamily
	seen map[string]struct{}

	builder orderedBuilder
}

func (a *assembler) run() (*Document, error) {
	for {
		et, err := a.p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch et {
		case textparse.EntryType:
			nameB, typ := a.p.Type()
			name := string(nameB)
			if err := a.continueFamily(name); err != nil {
				return nil, err
			}
			if a.cur.HasType {
				return nil, a.newError(textparse.ErrDuplicateType, "second TYPE line for metric family %q", name)
			}
			a.cur.Type, a.cur.HasType = typ, true

		case textparse.EntryHelp:
			nameB, help := a.p.Help()
			name := string(nameB)
			if err := a.continueFamily(name); err != nil {
				return nil, err
			}
			if a.cur.HasHelp {
				return nil, a.newError(textparse.ErrDuplicateHelp, "second HELP line for metric family %q", name)
			}
			a.cur.Help, a.cur.HasHelp = string(help), true

		case textparse.EntryUnit:
			nameB, unit := a.p.Unit()
			name := string(nameB)
			if err := a.continueFamily(name); err != nil {
				return nil, err
			}
			// An empty unit means no unit, so only non-empty text can
			// collide.
			if len(unit) > 0 {
				if a.cur.Unit != "" {
					return nil, a.newError(textparse.ErrDuplicateUnit, "second UNIT line for metric family %q", name)
				}
				a.cur.Unit = string(unit)
			}
			a.cur.HasUnit = true

		case textparse.EntrySeries:
			s := a.buildSample()
			if a.cur == nil || !isSeriesPartOfFamily(s.Name, a.cur.Name, a.cur.Type) {
				if err := a.openFamily(s.Name); err != nil {
					return nil, err
				}
			}
			a.cur.Samples = append(a.cur.Samples, s)
		}
	}

	return a.doc, a.closeFamily()
}

// continueFamily attaches a descriptor to the family it names, opening a
// new one if the name differs from the current family's.
func (a *assembler) continueFamily(name string) error {
	if a.cur != nil && a.cur.Name == name {
		return nil
	}
	return a.openFamily(name)
}

func (a *assembler) openFamily(name string) error {
	if err := a.closeFamily(); err != nil {
		return err
	}
	if _, ok := a.seen[name]; ok {
		return a.newError(textparse.ErrInterleavedFamily, "metric family %q interleaved with other families", name)
	}
	a.seen[name] = struct{}{}
	a.cur = &MetricFamily{Name: name, Type: textparse.MetricTypeUnknown}
	return nil
}

func (a *assembler) closeFamily() error {
	if a.cur == nil {
		return nil
	}
	// Families only open on a descriptor or sample line, so a completely
	// empty one cannot come from input.
	if !a.cur.HasType && !a.cur.HasHelp && !a.cur.HasUnit && len(a.cur.Samples) == 0 {
		return a.newError(textparse.ErrEmptyFamily, "internal: metric family %q has no descriptors and no samples", a.cur.Name)
	}
	a.doc.Families = append(a.doc.Families, a.cur)
	a.cur = nil
	return nil
}

func (a *assembler) buildSample() *Sample {
	a.p.MetricToBuilder(&a.builder)
	s := &Sample{
		Name:   a.builder.name,
		Labels: a.builder.take(),
		Value:  a.p.Number(),
	}
	s.Timestamp, s.HasTimestamp = a.p.Timestamp()

	if a.p.ExemplarLabelsToBuilder(&a.builder) {
		e := &Exemplar{Labels: a.builder.take()}
		e.Value, _ = a.p.ExemplarNumber()
		e.Timestamp, e.HasTimestamp = a.p.ExemplarTimestamp()
		s.Exemplar = e
	}
	return s
}

func (a *assembler) newError(kind textparse.ErrorKind, format string, args ...interface{}) error {
	line, offset := a.p.Position()
	return &textparse.ParseError{
		Kind:   kind,
		Line:   line,
		Offset: offset,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// orderedBuilder collects labels in the order the parser emits them. The
// first label added under labels.MetricName is the metric name.
type orderedBuilder struct {
	name string
	lset LabelSet
}

func (b *orderedBuilder) Add(name, value string) {
	if name == labels.MetricName && b.name == "" && b.lset == nil {
		b.name = value
		return
	}
	b.lset = append(b.lset, labels.Label{Name: name, Value: value})
}

func (b *orderedBuilder) Reset() {
	b.name = ""
	b.lset = nil
}

// Sort is a no-op. The document model keeps labels in exposition order
// so that re-encoding reproduces the input.
func (b *orderedBuilder) Sort() {}

// take hands the collected label set to the caller and detaches it from
// the builder.
func (b *orderedBuilder) take() LabelSet {
	l := b.lset
	b.lset = nil
	return l
}
