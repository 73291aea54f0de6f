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
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sinkingpoint/openmetrics-parser/model/exemplar"
	"github.com/sinkingpoint/openmetrics-parser/model/labels"
	"github.com/sinkingpoint/openmetrics-parser/model/value"
	"github.com/sinkingpoint/openmetrics-parser/util/testutil"
)

func TestMain(m *testing.M) {
	testutil.VerifyNoLeak(m)
}

func TestOpenMetricsParse(t *testing.T) {
	input := `# HELP go_gc_duration_seconds A summary of the GC invocation durations.
# TYPE go_gc_duration_seconds summary
# UNIT go_gc_duration_seconds seconds
go_gc_duration_seconds{quantile="0"} 4.9351e-05
go_gc_duration_seconds{quantile="0.25"} 7.424100000000001e-05
go_gc_duration_seconds{quantile="0.5",a="b"} 8.3835e-05
`
	// The trailing spaces here are significant. Keep them out of the raw
	// literal so editors cannot strip them.
	input += "# HELP nohelp1 \n"
	input += `# HELP help2 escape \ \n \\ \" \x chars
`
	input += "# UNIT nounit \n"
	input += `go_gc_duration_seconds_count 99
some:aggregate:rate5m{a_b="c"} 1
# HELP go_goroutines Number of goroutines that currently exist.
# TYPE go_goroutines gauge
go_goroutines 33 123.123
# TYPE hh histogram
hh_bucket{le="+Inf"} 1
# TYPE gh gaugehistogram
gh_bucket{le="+Inf"} 1
# TYPE hhh histogram
hhh_bucket{le="+Inf"} 1 # {aa="bb"} 4
# TYPE ggh gaugehistogram
ggh_bucket{le="+Inf"} 1 # {cc="dd",xx="yy"} 4 123.123
# TYPE ii info
ii{foo="bar"} 1
# TYPE ss stateset
ss{ss="foo"} 1
ss{A="a"} 0
# TYPE un unknown
_metric_starting_with_underscore 1
testmetric{_label_starting_with_underscore="foo"} 1
testmetric{label="\"bar\""} 1
# TYPE foo counter
foo_total 17.0 1520879607.789 # {xx="yy"} 5`

	input += "\n# HELP metric foo\x00bar"
	input += "\nnull_byte_metric{a=\"abc\x00\"} 1"
	input += "\n# EOF\n"

	int64p := func(x int64) *int64 { return &x }

	exp := []struct {
		lset labels.Labels
		m    string
		t    *int64
		v    float64
		typ  MetricType
		help string
		unit string
		e    *exemplar.Exemplar
	}{
		{
			m:    "go_gc_duration_seconds",
			help: "A summary of the GC invocation durations.",
		}, {
			m:   "go_gc_duration_seconds",
			typ: MetricTypeSummary,
		}, {
			m:    "go_gc_duration_seconds",
			unit: "seconds",
		}, {
			m:    `go_gc_duration_seconds{quantile="0"}`,
			v:    4.9351e-05,
			lset: labels.FromStrings("__name__", "go_gc_duration_seconds", "quantile", "0"),
		}, {
			m:    `go_gc_duration_seconds{quantile="0.25"}`,
			v:    7.424100000000001e-05,
			lset: labels.FromStrings("__name__", "go_gc_duration_seconds", "quantile", "0.25"),
		}, {
			m:    `go_gc_duration_seconds{quantile="0.5",a="b"}`,
			v:    8.3835e-05,
			lset: labels.FromStrings("__name__", "go_gc_duration_seconds", "quantile", "0.5", "a", "b"),
		}, {
			m:    "nohelp1",
			help: "",
		}, {
			// Help text is verbatim, backslashes are not escape sequences.
			m:    "help2",
			help: `escape \ \n \\ \" \x chars`,
		}, {
			m:    "nounit",
			unit: "",
		}, {
			m:    `go_gc_duration_seconds_count`,
			v:    99,
			lset: labels.FromStrings("__name__", "go_gc_duration_seconds_count"),
		}, {
			m:    `some:aggregate:rate5m{a_b="c"}`,
			v:    1,
			lset: labels.FromStrings("__name__", "some:aggregate:rate5m", "a_b", "c"),
		}, {
			m:    "go_goroutines",
			help: "Number of goroutines that currently exist.",
		}, {
			m:   "go_goroutines",
			typ: MetricTypeGauge,
		}, {
			m:    `go_goroutines`,
			v:    33,
			t:    int64p(123123),
			lset: labels.FromStrings("__name__", "go_goroutines"),
		}, {
			m:   "hh",
			typ: MetricTypeHistogram,
		}, {
			m:    `hh_bucket{le="+Inf"}`,
			v:    1,
			lset: labels.FromStrings("__name__", "hh_bucket", "le", "+Inf"),
		}, {
			m:   "gh",
			typ: MetricTypeGaugeHistogram,
		}, {
			m:    `gh_bucket{le="+Inf"}`,
			v:    1,
			lset: labels.FromStrings("__name__", "gh_bucket", "le", "+Inf"),
		}, {
			m:   "hhh",
			typ: MetricTypeHistogram,
		}, {
			m:    `hhh_bucket{le="+Inf"}`,
			v:    1,
			lset: labels.FromStrings("__name__", "hhh_bucket", "le", "+Inf"),
			e:    &exemplar.Exemplar{Labels: labels.FromStrings("aa", "bb"), Value: 4},
		}, {
			m:   "ggh",
			typ: MetricTypeGaugeHistogram,
		}, {
			m:    `ggh_bucket{le="+Inf"}`,
			v:    1,
			lset: labels.FromStrings("__name__", "ggh_bucket", "le", "+Inf"),
			e:    &exemplar.Exemplar{Labels: labels.FromStrings("cc", "dd", "xx", "yy"), Value: 4, HasTs: true, Ts: 123123},
		}, {
			m:   "ii",
			typ: MetricTypeInfo,
		}, {
			m:    `ii{foo="bar"}`,
			v:    1,
			lset: labels.FromStrings("__name__", "ii", "foo", "bar"),
		}, {
			m:   "ss",
			typ: MetricTypeStateset,
		}, {
			m:    `ss{ss="foo"}`,
			v:    1,
			lset: labels.FromStrings("__name__", "ss", "ss", "foo"),
		}, {
			m:    `ss{A="a"}`,
			v:    0,
			lset: labels.FromStrings("A", "a", "__name__", "ss"),
		}, {
			m:   "un",
			typ: MetricTypeUnknown,
		}, {
			m:    "_metric_starting_with_underscore",
			v:    1,
			lset: labels.FromStrings("__name__", "_metric_starting_with_underscore"),
		}, {
			m:    "testmetric{_label_starting_with_underscore=\"foo\"}",
			v:    1,
			lset: labels.FromStrings("__name__", "testmetric", "_label_starting_with_underscore", "foo"),
		}, {
			m:    "testmetric{label=\"\\\"bar\\\"\"}",
			v:    1,
			lset: labels.FromStrings("__name__", "testmetric", "label", `"bar"`),
		}, {
			m:   "foo",
			typ: MetricTypeCounter,
		}, {
			m:    "foo_total",
			v:    17,
			lset: labels.FromStrings("__name__", "foo_total"),
			t:    int64p(1520879607789),
			e:    &exemplar.Exemplar{Labels: labels.FromStrings("xx", "yy"), Value: 5},
		}, {
			m:    "metric",
			help: "foo\x00bar",
		}, {
			m:    "null_byte_metric{a=\"abc\x00\"}",
			v:    1,
			lset: labels.FromStrings("__name__", "null_byte_metric", "a", "abc\x00"),
		},
	}

	p := New([]byte(input))
	i := 0

	var res labels.Labels

	for {
		et, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		switch et {
		case EntrySeries:
			m, ts, v := p.Series()

			var e exemplar.Exemplar
			p.Metric(&res)
			found := p.Exemplar(&e)
			require.Equal(t, exp[i].m, string(m))
			require.Equal(t, exp[i].t, ts)
			require.Equal(t, exp[i].v, v)
			require.Equal(t, exp[i].lset, res)
			if exp[i].e == nil {
				require.False(t, found)
			} else {
				require.True(t, found)
				require.Equal(t, *exp[i].e, e)
			}
			res = res[:0]

		case EntryType:
			m, typ := p.Type()
			require.Equal(t, exp[i].m, string(m))
			require.Equal(t, exp[i].typ, typ)

		case EntryHelp:
			m, h := p.Help()
			require.Equal(t, exp[i].m, string(m))
			require.Equal(t, exp[i].help, string(h))

		case EntryUnit:
			m, u := p.Unit()
			require.Equal(t, exp[i].m, string(m))
			require.Equal(t, exp[i].unit, string(u))
		}

		i++
	}
	require.Len(t, exp, i)
}

func TestOpenMetricsParseNumbers(t *testing.T) {
	input := `one 1
seventeen 17.0
nan NaN
posinf +Inf
neginf -infinity
withts 1 1520879607.789
# EOF
`
	p := NewOpenMetricsParser([]byte(input))

	exp := []struct {
		text string
		kind value.Kind
	}{
		{text: "1", kind: value.Finite},
		{text: "17.0", kind: value.Finite},
		{text: "NaN", kind: value.NaN},
		{text: "+Inf", kind: value.PosInf},
		{text: "-infinity", kind: value.NegInf},
		{text: "1", kind: value.Finite},
	}
	for _, e := range exp {
		et, err := p.Next()
		require.NoError(t, err)
		require.Equal(t, EntrySeries, et)

		n := p.Number()
		require.Equal(t, e.text, n.Text)
		require.Equal(t, e.kind, n.Kind)
	}

	// The raw timestamp of the last sample keeps its spelling.
	ts, ok := p.Timestamp()
	require.True(t, ok)
	require.Equal(t, "1520879607.789", ts.Text)

	_, err := p.Next()
	require.Equal(t, io.EOF, err)
}

func TestOpenMetricsParseDanglingBackslash(t *testing.T) {
	// A backslash that does not start a recognized escape sequence stands
	// for itself.
	input := "m{a=\"\\xff\"} 1\n# EOF\n"

	p := NewOpenMetricsParser([]byte(input))
	et, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, EntrySeries, et)

	var res labels.Labels
	p.Metric(&res)
	require.Equal(t, `\xff`, res.Get("a"))
}

func TestOpenMetricsParseErrors(t *testing.T) {
	cases := []struct {
		input string
		err   string
	}{
		// Happy cases. EOF is returned by the parser at the end of valid
		// data.
		{
			input: "# EOF",
			err:   "EOF",
		},
		{
			input: "# EOF\n",
			err:   "EOF",
		},
		// Unhappy cases.
		{
			input: "",
			err:   "line 1: data does not end with # EOF",
		},
		{
			input: "\n",
			err:   "line 1: \"\\n\" is not a valid start of a line",
		},
		{
			input: "9\n# EOF\n",
			err:   "line 1: \"9\" is not a valid start of a line",
		},
		{
			input: " a 1\n# EOF\n",
			err:   "line 1: \" \" is not a valid start of a line",
		},
		{
			input: "metric",
			err:   "line 1: expected value after metric",
		},
		{
			input: "a\n# EOF\n",
			err:   "line 1: expected value after metric",
		},
		{
			input: "metric 1",
			err:   "line 1: data does not end with # EOF",
		},
		{
			input: "metric 1\n",
			err:   "line 2: data does not end with # EOF",
		},
		{
			input: "#EOF\n",
			err:   "line 1: expected space after \"#\"",
		},
		{
			input: "# EOF \n",
			err:   "line 1: unexpected data after # EOF",
		},
		{
			input: "# EOFfoo\n",
			err:   "line 1: expected TYPE, HELP, UNIT or EOF after \"#\", got \"EOFfoo\"",
		},
		{
			input: "# EOF extra\n",
			err:   "line 1: unexpected data after # EOF",
		},
		{
			input: "# EOF\nextra",
			err:   "line 1: unexpected data after # EOF",
		},
		{
			input: "# WEIRD m x\n# EOF\n",
			err:   "line 1: expected TYPE, HELP, UNIT or EOF after \"#\", got \"WEIRD\"",
		},
		{
			input: "# TYPE m counte\n# EOF\n",
			err:   "line 1: invalid metric type \"counte\"",
		},
		{
			input: "# TYPE m counter \n# EOF\n",
			err:   "line 1: invalid metric type \"counter \"",
		},
		{
			input: "# TYPE m\n# EOF\n",
			err:   "line 1: expected text in TYPE",
		},
		{
			input: "# HELP m\n# EOF\n",
			err:   "line 1: expected text in HELP",
		},
		{
			input: "# UNIT m b@d\n# EOF\n",
			err:   "line 1: \"@\" is not a valid unit character",
		},
		{
			input: "m{a=\"1\",a=\"2\"} 1\n# EOF\n",
			err:   "line 1: duplicate label name \"a\"",
		},
		{
			input: "m{a=\"1",
			err:   "line 1: unterminated label value",
		},
		{
			input: "m{a=\"1\n# EOF\n",
			err:   "line 1: unterminated label value",
		},
		{
			input: "m{a=1} 1\n# EOF\n",
			err:   "line 1: expected label value",
		},
		{
			input: "m{a\"1\"} 1\n# EOF\n",
			err:   "line 1: expected \"=\" after label name",
		},
		{
			input: "m{=\"1\"} 1\n# EOF\n",
			err:   "line 1: expected label name",
		},
		{
			input: "m{a=\"1\"+b=\"2\"} 1\n# EOF\n",
			err:   "line 1: expected \",\" or \"}\" after label value",
		},
		{
			input: "m 1 1 1\n# EOF\n",
			err:   "line 1: expected exemplar after timestamp",
		},
		{
			input: "m 1 NaN\n# EOF\n",
			err:   "line 1: invalid timestamp",
		},
		{
			input: "m 1 +Inf\n# EOF\n",
			err:   "line 1: invalid timestamp",
		},
		{
			input: "m 1 # {a=\"1\"} 1\n# EOF\n",
			err:   "line 1: metric name m does not support exemplars",
		},
		{
			input: "m_total 1 # {a=\"1\"} 1 NaN\n# EOF\n",
			err:   "line 1: invalid exemplar timestamp",
		},
		{
			input: "m_total 1 #{a=\"1\"} 1\n# EOF\n",
			err:   "line 1: expected space after exemplar \"#\"",
		},
		{
			input: "m{b=\"\xc3\x28\"} 1\n# EOF\n",
			err:   "line 1: invalid UTF-8 label value",
		},
		{
			input: "m abc\n# EOF\n",
			err:   "line 1: strconv.ParseFloat: parsing \"abc\": invalid syntax",
		},
		{
			input: "m +nan\n# EOF\n",
			err:   "line 1: strconv.ParseFloat: parsing \"+nan\": invalid syntax",
		},
		{
			input: "m 1_000\n# EOF\n",
			err:   "line 1: unsupported character in float",
		},
		{
			input: "m .5\n# EOF\n",
			err:   "line 1: expected digit before the decimal point",
		},
		{
			input: "m -.5\n# EOF\n",
			err:   "line 1: expected digit before the decimal point",
		},
		{
			input: "m 0x1p-3\n# EOF\n",
			err:   "line 1: unsupported character in float",
		},
		{
			input: "m 1\nanother 2\n",
			err:   "line 3: data does not end with # EOF",
		},
	}

	for _, c := range cases {
		p := NewOpenMetricsParser([]byte(c.input))
		var err error
		for err == nil {
			_, err = p.Next()
		}
		require.Error(t, err)
		require.Equal(t, c.err, err.Error(), "input %q", c.input)
	}
}

func TestParseErrorDetails(t *testing.T) {
	p := NewOpenMetricsParser([]byte("ok 1\nbad 0x1p-3\n# EOF\n"))

	et, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, EntrySeries, et)

	_, err = p.Next()
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ErrInvalidNumber, perr.Kind)
	require.Equal(t, 2, perr.Line)
	require.Equal(t, 9, perr.Offset)
	require.ErrorIs(t, err, value.ErrUnsupportedCharacter)
}

func TestMetricToBuilder(t *testing.T) {
	p := NewOpenMetricsParser([]byte("m{z=\"1\",a=\"2\"} 5\n# EOF\n"))
	et, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, EntrySeries, et)

	var b recordingBuilder
	p.MetricToBuilder(&b)
	require.True(t, b.reset)
	require.True(t, b.sorted)
	// The name comes first, the rest keeps input order.
	require.Equal(t, []labels.Label{
		{Name: labels.MetricName, Value: "m"},
		{Name: "z", Value: "1"},
		{Name: "a", Value: "2"},
	}, b.added)
}

type recordingBuilder struct {
	added  []labels.Label
	reset  bool
	sorted bool
}

func (b *recordingBuilder) Add(name, value string) {
	b.added = append(b.added, labels.Label{Name: name, Value: value})
}

func (b *recordingBuilder) Reset() { b.reset = true }
func (b *recordingBuilder) Sort()  { b.sorted = true }
