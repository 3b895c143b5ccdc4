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
	"reflect"
	"testing"

	"github.com/ecollection/grid/core/schema"
)

func TestParseSplitsOnFirstColon(t *testing.T) {
	s := Parse([]string{"name:Rose", "time:12:30:00", "empty:", "bare", "name:Tulip"})

	expected := map[string]string{
		"name":  "Tulip",
		"time":  "12:30:00",
		"empty": "",
		"bare":  "",
	}
	if !reflect.DeepEqual(s.Map(), expected) {
		t.Errorf("Expected %v, got %v", expected, s.Map())
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []map[string]string{
		{},
		{"name": "Rose"},
		{"location.city": "Paris", "comment": "a:b:c", "url": "http://example.com:8080/x"},
		{"weird": "::", "spaces": " padded ", "unicode": "élan"},
	}
	for _, m := range tests {
		s := FromMap(m)
		back := Parse(s.Tokens())
		if !back.Equal(s) {
			t.Errorf("Round trip of %v gave %v", m, back.Map())
		}
	}
}

func TestTokensAreSorted(t *testing.T) {
	s := FromMap(map[string]string{"b": "2", "a": "1", "c.d": "3"})
	expected := []string{"a:1", "b:2", "c.d:3"}
	if !reflect.DeepEqual(s.Tokens(), expected) {
		t.Errorf("Expected %v, got %v", expected, s.Tokens())
	}
}

func TestSetIsImmutable(t *testing.T) {
	base := FromMap(map[string]string{"a": "1"})
	added := base.With("b", "2")
	removed := added.Without("a")
	cleared := added.With("b", "")

	if base.Len() != 1 {
		t.Errorf("With modified the original set: %v", base.Map())
	}
	if added.Len() != 2 {
		t.Errorf("Expected 2 filters, got %v", added.Map())
	}
	if _, ok := removed.Get("a"); ok || removed.Len() != 1 {
		t.Errorf("Expected only b, got %v", removed.Map())
	}
	if _, ok := cleared.Get("b"); ok {
		t.Errorf("Expected an empty value to remove the filter, got %v", cleared.Map())
	}

	var zero Set
	if zero.Len() != 0 || len(zero.Tokens()) != 0 {
		t.Errorf("Expected the zero Set to be empty")
	}
	if v, ok := zero.With("x", "y").Get("x"); !ok || v != "y" {
		t.Errorf("Expected With on the zero Set to work")
	}
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name    string
		kind    schema.Kind
		raw     string
		want    string
		wantErr error
	}{
		{"text trimmed", schema.Text, "  rose ", "rose", nil},
		{"integer", schema.Number, "42", "42", nil},
		{"decimal point", schema.Number, "4.5", "4.5", nil},
		{"decimal comma", schema.Number, " 4,5 ", "4.5", nil},
		{"leading separator", schema.Number, ",5", ".5", nil},
		{"empty number", schema.Number, "", "", nil},
		{"negative number", schema.Number, "-3", "", ErrInvalidNumber},
		{"trailing separator", schema.Number, "4.", "", ErrInvalidNumber},
		{"two separators", schema.Number, "1.2.3", "", ErrInvalidNumber},
		{"letters", schema.Number, "12a", "", ErrInvalidNumber},
		{"date", schema.Date, "01/10/2012", "2012-10-01T00:00:00.000Z", nil},
		{"empty date", schema.Date, " ", "", nil},
		{"american date", schema.Date, "10/31/2012", "", ErrInvalidDate},
		{"short date", schema.Date, "1/10/2012", "", ErrInvalidDate},
		{"iso date", schema.Date, "2012-10-01", "", ErrInvalidDate},
		{"boolean", schema.Boolean, "true", "true", nil},
		{"not filterable", schema.NestedModel, "x", "", schema.ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Submit(tt.kind, tt.raw)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidNumber(t *testing.T) {
	for _, raw := range []string{"", "0", "12", "1.5", "1,5", ".5"} {
		if !ValidNumber(raw) {
			t.Errorf("Expected %q to be valid", raw)
		}
	}
	for _, raw := range []string{"a", "1.", "1e3", " 1", "1,5,"} {
		if ValidNumber(raw) {
			t.Errorf("Expected %q to be invalid", raw)
		}
	}
}

func TestParseDate(t *testing.T) {
	for _, v := range []string{"2012-10-01T00:00:00.000Z", "2012-10-01T00:00:00Z", "2012-10-01"} {
		d, err := ParseDate(v)
		if err != nil {
			t.Errorf("ParseDate(%q) failed: %v", v, err)
			continue
		}
		if d.Year() != 2012 || d.Month() != 10 || d.Day() != 1 {
			t.Errorf("ParseDate(%q) = %v", v, d)
		}
	}
	if _, err := ParseDate("yesterday"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Expected ErrInvalidDate, got %v", err)
	}
}

func TestInputDateResubmits(t *testing.T) {
	tests := []struct {
		stored string
		want   string
	}{
		{"2012-10-01T00:00:00.000Z", "01/10/2012"},
		{"2019-04-12", "12/04/2019"},
		{"", ""},
		{"yesterday", ""},
	}

	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			got := InputDate(tt.stored)
			if got != tt.want {
				t.Fatalf("Expected %q, got %q", tt.want, got)
			}
			if got == "" {
				return
			}
			again, err := Submit(schema.Date, got)
			if err != nil {
				t.Fatalf("Submit(%q) failed: %v", got, err)
			}
			if InputDate(again) != got {
				t.Errorf("Expected %q after resubmission, got %q", got, InputDate(again))
			}
		})
	}
}
