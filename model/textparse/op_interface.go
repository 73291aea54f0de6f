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

import "github.com/sinkingpoint/openmetrics-parser/model/labels"

// Builder interface for labels builder.
type Builder interface {
	Add(name, value string)
	Reset()
	Sort()
}

// MetricToBuilder writes the labels of the current sample into the passed
// builder. The metric name is passed first under labels.MetricName, the
// remaining labels follow in the order they appear in the input.
func (p *OpenMetricsParser) MetricToBuilder(builder Builder) {
	// Copy the buffer to a string: this is only necessary for the return value.
	s := string(p.series)

	builder.Reset()
	builder.Add(labels.MetricName, s[:p.offsets[0]-p.start])

	for i := 1; i < len(p.offsets); i += 4 {
		a := p.offsets[i] - p.start
		b := p.offsets[i+1] - p.start
		c := p.offsets[i+2] - p.start
		d := p.offsets[i+3] - p.start

		builder.Add(s[a:b], decodeLabelValue(s[c:d]))
	}
	builder.Sort()
}

// ExemplarLabelsToBuilder writes the labels of the current sample's
// exemplar into the passed builder, in input order. It returns whether an
// exemplar exists.
func (p *OpenMetricsParser) ExemplarLabelsToBuilder(builder Builder) bool {
	if !p.hasExemplar {
		return false
	}
	builder.Reset()
	for i := 0; i+3 < len(p.eOffsets); i += 4 {
		name := string(p.b[p.eOffsets[i]:p.eOffsets[i+1]])
		val := decodeLabelValue(string(p.b[p.eOffsets[i+2]:p.eOffsets[i+3]]))
		builder.Add(name, val)
	}
	builder.Sort()
	return true
}
