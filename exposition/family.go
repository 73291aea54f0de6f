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

	"github.com/sinkingpoint/openmetrics-parser/model/textparse"
)

// isSeriesPartOfFamily reports whether a series name belongs to a metric
// family. Series names extend the family name with suffixes determined by
// the family type: _total and _created for counters, _bucket/_sum/_count/
// _created for histograms, _bucket/_gsum/_gcount for gauge histograms,
// _sum/_count/_created or the bare name for summaries and _info for info
// metrics. For every other type the names must match exactly.
func isSeriesPartOfFamily(sName, mfName string, typ textparse.MetricType) bool {
	if !strings.HasPrefix(sName, mfName) { // Fast path.
		return false
	}

	var (
		got string
		ok  bool
	)
	switch typ {
	case textparse.MetricTypeCounter:
		got, ok = strings.CutSuffix(sName, "_total")
		if !ok {
			got, ok = strings.CutSuffix(sName, "_created")
			if !ok {
				got = sName
			}
		}
	case textparse.MetricTypeHistogram:
		got, ok = strings.CutSuffix(sName, "_bucket")
		if !ok {
			got, ok = strings.CutSuffix(sName, "_sum")
			if !ok {
				got, ok = strings.CutSuffix(sName, "_count")
				if !ok {
					got, ok = strings.CutSuffix(sName, "_created")
					if !ok {
						got = sName
					}
				}
			}
		}
	case textparse.MetricTypeGaugeHistogram:
		got, ok = strings.CutSuffix(sName, "_bucket")
		if !ok {
			got, ok = strings.CutSuffix(sName, "_gsum")
			if !ok {
				got, ok = strings.CutSuffix(sName, "_gcount")
				if !ok {
					got = sName
				}
			}
		}
	case textparse.MetricTypeSummary:
		got, ok = strings.CutSuffix(sName, "_sum")
		if !ok {
			got, ok = strings.CutSuffix(sName, "_count")
			if !ok {
				got, ok = strings.CutSuffix(sName, "_created")
				if !ok {
					got = sName
				}
			}
		}
	case textparse.MetricTypeInfo:
		got, ok = strings.CutSuffix(sName, "_info")
		if !ok {
			got = sName
		}
	default:
		got = sName
	}
	return got == mfName
}
