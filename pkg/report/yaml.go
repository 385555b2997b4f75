// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"laptudirm.com/x/autopsy/pkg/analysis"
)

// Dump is the machine readable form of a game's analysis.
type Dump struct {
	Tags    map[string]string `yaml:"tags,omitempty"`
	Records []analysis.Record `yaml:"records"`
	Worst   []int             `yaml:"worst,flow"` // plies
}

// NewDump collects the records and the ranking of a game's analysis.
func NewDump(tags map[string]string, records, worst []analysis.Record) Dump {
	dump := Dump{Tags: tags, Records: records, Worst: []int{}}
	for _, record := range worst {
		dump.Worst = append(dump.Worst, record.Ply)
	}

	return dump
}

// WriteYAML writes the dump to w.
func WriteYAML(w io.Writer, dump Dump) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(dump); err != nil {
		return err
	}

	return encoder.Close()
}

// WriteYAMLFile writes the dump to the file at path.
func WriteYAMLFile(path string, dump Dump) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteYAML(file, dump); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}
