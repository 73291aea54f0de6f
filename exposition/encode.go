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
	"strings"
)

var lvalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
)

// String encodes the document back into the OpenMetrics text exposition
// format, terminated with the # EOF line. Parsing the result yields a
// document equal to this one: numbers keep their original spelling and
// labels their original order, though escape sequences in label values
// are written in canonical form.
func (d *Document) String() string {
	var sb strings.Builder
	for _, mf := range d.Families {
		mf.write(&sb)
	}
	sb.WriteString("# EOF\n")
	return sb.String()
}

// String encodes a single metric family, without the trailing # EOF line.
func (mf *MetricFamily) String() string {
	var sb strings.Builder
	mf.write(&sb)
	return sb.String()
}

func (mf *MetricFamily) write(sb *strings.Builder) {
	if mf.HasType {
		sb.WriteString("# TYPE ")
		sb.WriteString(mf.Name)
		sb.WriteByte(' ')
		sb.WriteString(string(mf.Type))
		sb.WriteByte('\n')
	}
	if mf.Unit != "" {
		sb.WriteString("# UNIT ")
		sb.WriteString(mf.Name)
		sb.WriteByte(' ')
		sb.WriteString(mf.Unit)
		sb.WriteByte('\n')
	}
	if mf.HasHelp {
		sb.WriteString("# HELP ")
		sb.WriteString(mf.Name)
		sb.WriteByte(' ')
		sb.WriteString(mf.Help)
		sb.WriteByte('\n')
	}
	for _, s := range mf.Samples {
		s.write(sb)
	}
}

// String encodes a single sample line, including the trailing newline.
func (s *Sample) String() string {
	var sb strings.Builder
	s.write(&sb)
	return sb.String()
}

func (s *Sample) write(sb *strings.Builder) {
	sb.WriteString(s.Name)
	if len(s.Labels) > 0 {
		writeLabelSet(sb, s.Labels)
	}
	sb.WriteByte(' ')
	sb.WriteString(s.Value.String())
	if s.HasTimestamp {
		sb.WriteByte(' ')
		sb.WriteString(s.Timestamp.String())
	}
	if s.Exemplar != nil {
		sb.WriteString(" # ")
		// The label braces are part of the exemplar grammar even when
		// the set is empty.
		writeLabelSet(sb, s.Exemplar.Labels)
		sb.WriteByte(' ')
		sb.WriteString(s.Exemplar.Value.String())
		if s.Exemplar.HasTimestamp {
			sb.WriteByte(' ')
			sb.WriteString(s.Exemplar.Timestamp.String())
		}
	}
	sb.WriteByte('\n')
}

func writeLabelSet(sb *strings.Builder, ls LabelSet) {
	sb.WriteByte('{')
	for i, l := range ls {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(l.Name)
		sb.WriteString(`="`)
		lvalEscaper.WriteString(sb, l.Value)
		sb.WriteByte('"')
	}
	sb.WriteByte('}')
}
