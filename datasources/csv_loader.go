/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The eCollection Grid Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package datasources

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/google/uuid"

	"github.com/ecollection/grid/core/collection"
	"github.com/ecollection/grid/core/schema"
)

// CsvLoader implements Loader for CSV files whose header row names the
// attribute path of each column (e.g. "location.country").
//
// Required config keys:
//   - file_path: Path to the CSV file
//
// Optional config keys:
//   - delimiter: Field delimiter (default: ",")
//   - id_column: Column holding the record id (default: "id"); records
//     without one get a random UUID
//   - base_url: Prefix of the record view links (default: "/")
type CsvLoader struct{}

// NewCsvLoader creates a new CSV loader.
func NewCsvLoader() *CsvLoader {
	return &CsvLoader{}
}

// SourceType returns "csv".
func (l *CsvLoader) SourceType() string {
	return "csv"
}

// Load reads the CSV file named by config.
func (l *CsvLoader) Load(config map[string]string, fields schema.Schema) ([]*collection.Document, error) {
	filePath := config["file_path"]
	if filePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file, config, fields)
}

// ReadCSV reads CSV records from r. config holds the same optional keys as
// for CsvLoader.
func ReadCSV(r io.Reader, config map[string]string, fields schema.Schema) ([]*collection.Document, error) {
	reader := csv.NewReader(r)
	if d := config["delimiter"]; d != "" {
		reader.Comma = rune(d[0])
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idColumn := config["id_column"]
	if idColumn == "" {
		idColumn = "id"
	}
	idIndex := slices.Index(header, idColumn)

	base := config["base_url"]
	if base == "" {
		base = "/"
	}

	var docs []*collection.Document
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		id := ""
		if idIndex >= 0 && idIndex < len(row) {
			id = row[idIndex]
		}
		if id == "" {
			id = uuid.NewString()
		}

		data, err := DocumentData(header, row, fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		delete(data, idColumn)
		docs = append(docs, collection.NewDocument(id, data, base))
	}
	return docs, nil
}
