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

// The omcheck command validates OpenMetrics text exposition payloads.
package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"

	"github.com/sinkingpoint/openmetrics-parser/exposition"
	"github.com/sinkingpoint/openmetrics-parser/model/textparse"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	var (
		app      = kingpin.New(filepath.Base(os.Args[0]), "Validate OpenMetrics text exposition payloads.")
		dumpJSON = app.Flag("json", "Dump the parsed document as JSON to stdout.").Bool()
		reencode = app.Flag("reencode", "Write the document back out in canonical text form.").Bool()
		files    = app.Arg("files", `Input files ("-" or none reads stdin).`).Strings()
	)
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))

	if len(*files) == 0 {
		*files = []string{"-"}
	}
	failed := false
	for _, f := range *files {
		if err := checkFile(logger, f, *dumpJSON, *reencode); err != nil {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func checkFile(logger log.Logger, name string, dumpJSON, reencode bool) error {
	var (
		b   []byte
		err error
	)
	if name == "-" {
		name = "<stdin>"
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		level.Error(logger).Log("file", name, "err", err)
		return err
	}

	doc, err := exposition.Parse(b)
	if err != nil {
		var perr *textparse.ParseError
		if errors.As(err, &perr) {
			level.Error(logger).Log("file", name, "line", perr.Line, "offset", perr.Offset, "kind", perr.Kind, "err", err)
		} else {
			level.Error(logger).Log("file", name, "err", err)
		}
		return err
	}

	samples := 0
	for _, mf := range doc.Families {
		samples += len(mf.Samples)
	}
	level.Info(logger).Log("file", name, "families", len(doc.Families), "samples", samples)

	if dumpJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			level.Error(logger).Log("file", name, "err", err)
			return err
		}
	}
	if reencode {
		if _, err := io.WriteString(os.Stdout, doc.String()); err != nil {
			level.Error(logger).Log("file", name, "err", err)
			return err
		}
	}
	return nil
}
