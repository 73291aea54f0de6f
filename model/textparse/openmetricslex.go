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

// Character classes of the format. All classes are ASCII-only; arbitrary
// bytes are only admitted inside help text and quoted label values.

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Metric names may start with a letter, underscore or colon.
func isMetricNameStart(c byte) bool {
	return isAlpha(c) || c == '_' || c == ':'
}

func isMetricNameChar(c byte) bool {
	return isMetricNameStart(c) || isDigit(c)
}

// Label names may start with a letter or underscore. Unlike metric names
// they never contain a colon.
func isLabelNameStart(c byte) bool {
	return isAlpha(c) || c == '_'
}

func isLabelNameChar(c byte) bool {
	return isLabelNameStart(c) || isDigit(c)
}

// consumeMetricName consumes the longest run of metric name characters of b
// starting at i and returns the position after it. A return value equal to
// i means no valid name was found.
func consumeMetricName(b []byte, i int) int {
	if i >= len(b) || !isMetricNameStart(b[i]) {
		return i
	}
	j := i + 1
	for j < len(b) && isMetricNameChar(b[j]) {
		j++
	}
	return j
}

// consumeLabelName is the label name counterpart of consumeMetricName.
func consumeLabelName(b []byte, i int) int {
	if i >= len(b) || !isLabelNameStart(b[i]) {
		return i
	}
	j := i + 1
	for j < len(b) && isLabelNameChar(b[j]) {
		j++
	}
	return j
}

// consumeToken consumes up to the next space, newline or end of input.
// Numeric literals are bounded this way; their internal syntax is checked
// by value.Parse.
func consumeToken(b []byte, i int) int {
	j := i
	for j < len(b) && b[j] != ' ' && b[j] != '\n' {
		j++
	}
	return j
}
