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

package filters

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ecollection/grid/core/schema"
)

var (
	// ErrInvalidNumber is returned for number filters that are not a plain
	// decimal number.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidDate is returned for date filters that are not DD/MM/YYYY.
	ErrInvalidDate = errors.New("invalid date")
)

var numberRegexp = regexp.MustCompile(`^([0-9]+|[0-9]*[.,][0-9]+)$`)

// InputDateLayout is the layout of dates typed in filter forms.
const InputDateLayout = "02/01/2006"

// StoredDateLayout is the layout of date filter values in URLs.
const StoredDateLayout = "2006-01-02T15:04:05.000Z07:00"

// dateParseFormats lists the layouts accepted for stored date values.
var dateParseFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ValidNumber reports whether raw is an acceptable number filter input.
// The empty string is accepted: it clears the filter.
func ValidNumber(raw string) bool {
	return raw == "" || numberRegexp.MatchString(raw)
}

// Submit normalizes the value typed in the filter form of a header of the
// given kind. An empty result means the filter must be removed. Invalid
// input yields an empty value together with an error, so callers may flag
// the field and still drop the filter.
func Submit(kind schema.Kind, raw string) (string, error) {
	switch kind {
	case schema.Text:
		return strings.TrimSpace(raw), nil
	case schema.Number:
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", nil
		}
		if !ValidNumber(v) {
			return "", fmt.Errorf("%w: %q", ErrInvalidNumber, v)
		}
		return strings.Replace(v, ",", ".", 1), nil
	case schema.Date:
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", nil
		}
		t, err := time.ParseInLocation(InputDateLayout, v, time.UTC)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, v)
		}
		return t.Format(StoredDateLayout), nil
	case schema.Boolean:
		return raw, nil
	default:
		return "", fmt.Errorf("%w: %s is not filterable", schema.ErrUnknownKind, kind)
	}
}

// InputDate formats a stored date filter value with InputDateLayout, so
// that it can be submitted again unchanged. It returns an empty string when
// the value cannot be parsed.
func InputDate(value string) string {
	if value == "" {
		return ""
	}
	t, err := ParseDate(value)
	if err != nil {
		return ""
	}
	return t.UTC().Format(InputDateLayout)
}

// ParseDate parses a stored date filter value.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateParseFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}
