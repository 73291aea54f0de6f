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

// Package exposition turns a complete OpenMetrics text payload into a
// structured document of metric families, samples, labels and exemplars.
package exposition

import (
	"github.com/sinkingpoint/openmetrics-parser/model/labels"
	"github.com/sinkingpoint/openmetrics-parser/model/textparse"
	"github.com/sinkingpoint/openmetrics-parser/model/value"
)

// LabelSet is an ordered list of name/value pairs. Unlike labels.Labels
// it preserves the order in which pairs appear on the wire, so that
// re-encoding a parsed document reproduces its input. Label names are
// unique; the parser rejects duplicates.
type LabelSet []labels.Label

// Get returns the value for the label with the given name, or "".
func (ls LabelSet) Get(name string) string {
	for _, l := range ls {
		if l.Name == name {
			return l.Value
		}
	}
	return ""
}

// Sorted returns the labels sorted by name, for callers that need the
// canonical ordering rather than the wire ordering.
func (ls LabelSet) Sorted() labels.Labels {
	res := make(labels.Labels, len(ls))
	copy(res, ls)
	res.Sort()
	return res
}

// Document is the parse result of one exposition payload: an ordered
// sequence of metric families. It is constructed in a single parse pass
// and not modified afterwards.
type Document struct {
	Families []*MetricFamily `json:"families"`
}

// MetricFamily is a named group of samples, optionally annotated with
// type, help and unit metadata. Each of the three descriptors occurs at
// most once per family; a family has at least one descriptor or at least
// one sample.
type MetricFamily struct {
	Name string `json:"name"`

	// Type is MetricTypeUnknown when no TYPE line was present; HasType
	// distinguishes an explicit "unknown" from an absent declaration.
	Type    textparse.MetricType `json:"type"`
	HasType bool                 `json:"-"`

	Help    string `json:"help,omitempty"`
	HasHelp bool   `json:"-"`

	// Unit is empty when absent. The format treats an empty unit and a
	// missing one as the same thing. HasUnit records that a UNIT line was
	// present even with empty text.
	Unit    string `json:"unit,omitempty"`
	HasUnit bool   `json:"-"`

	Samples []*Sample `json:"samples"`
}

// Sample is one observed value line for a metric.
type Sample struct {
	Name   string       `json:"name"`
	Labels LabelSet     `json:"labels,omitempty"`
	Value  value.Number `json:"value"`

	Timestamp    value.Number `json:"timestamp"`
	HasTimestamp bool         `json:"-"`

	Exemplar *Exemplar `json:"exemplar,omitempty"`
}

// Exemplar is an auxiliary labeled value attached to a sample.
type Exemplar struct {
	Labels LabelSet     `json:"labels"`
	Value  value.Number `json:"value"`

	Timestamp    value.Number `json:"timestamp"`
	HasTimestamp bool         `json:"-"`
}
