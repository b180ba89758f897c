// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/lodestar/internal/recommend"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type preferencesInput struct {
	Categories  []string `json:"categories" validate:"max=50,dive,required"`
	Keywords    []string `json:"keywords" validate:"max=100,dive,tagname"`
	SourceTypes []string `json:"source_types" validate:"dive,sourcetype"`
	MinTrust    int      `json:"min_trust_score" validate:"gte=0,lte=100"`
	Language    string   `json:"language" validate:"omitempty,min=2,max=8"`
}

type interactionInput struct {
	ItemID string `json:"item_id" validate:"required"`
	Kind   string `json:"kind" validate:"required,interaction"`
}

type nestedConfig struct {
	Server struct {
		Port int `koanf:"port" validate:"min=1,max=65535"`
	} `koanf:"server"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input interface{}
	}{
		{
			name: "full preferences",
			input: &preferencesInput{
				Categories:  []string{"herbs"},
				Keywords:    []string{"tea", "lavender"},
				SourceTypes: []string{"paper", "manual"},
				MinTrust:    70,
				Language:    "en",
			},
		},
		{
			name:  "empty preferences",
			input: &preferencesInput{},
		},
		{
			name:  "interaction",
			input: &interactionInput{ItemID: "p1", Kind: "bookmark"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{
			name:      "trust above range",
			input:     &preferencesInput{MinTrust: 101},
			wantField: "min_trust_score",
			wantTag:   "lte",
		},
		{
			name:      "unknown source type",
			input:     &preferencesInput{SourceTypes: []string{"blog"}},
			wantField: "source_types[0]",
			wantTag:   "sourcetype",
		},
		{
			name:      "tag with comma",
			input:     &preferencesInput{Keywords: []string{"a,b"}},
			wantField: "keywords[0]",
			wantTag:   "tagname",
		},
		{
			name:      "blank tag",
			input:     &preferencesInput{Keywords: []string{"  "}},
			wantField: "keywords[0]",
			wantTag:   "tagname",
		},
		{
			name:      "missing item id",
			input:     &interactionInput{Kind: "like"},
			wantField: "item_id",
			wantTag:   "required",
		},
		{
			name:      "unknown interaction kind",
			input:     &interactionInput{ItemID: "p1", Kind: "share"},
			wantField: "kind",
			wantTag:   "interaction",
		},
		{
			name:      "nested koanf field",
			input:     &nestedConfig{},
			wantField: "server.port",
			wantTag:   "min",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			found := false
			for _, e := range err.Errors() {
				if e.Field() == tt.wantField && e.Tag() == tt.wantTag {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error on field %s with tag %s, got: %v", tt.wantField, tt.wantTag, err.Errors())
			}
		})
	}
}

func TestRequestValidationError_MatchesEngineSentinel(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&interactionInput{})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	var err error = verr
	if !errors.Is(err, recommend.ErrValidation) {
		t.Error("errors.Is(err, recommend.ErrValidation) = false, want true")
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&interactionInput{ItemID: "p1", Kind: "share"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %s, want %s", apiErr.Code, ErrorCode)
	}
	if apiErr.Message != "kind must be one of: bookmark like view" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "kind" {
		t.Errorf("Details[field] = %v, want kind", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&interactionInput{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %s, want %s", apiErr.Code, ErrorCode)
	}

	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("len(fields) = %d, want 2", len(fields))
	}
	if !strings.Contains(apiErr.Message, "item_id: item_id is required") {
		t.Errorf("Message = %q, want item_id listed", apiErr.Message)
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	type sized struct {
		Name string   `json:"name" validate:"min=3"`
		Tags []string `json:"tags" validate:"max=1"`
	}

	err := ValidateStruct(&sized{Name: "ab", Tags: []string{"a", "b"}})
	if err == nil {
		t.Fatal("expected validation error")
	}

	want := map[string]string{
		"name": "name must be at least 3 characters",
		"tags": "tags must be at most 1 items",
	}
	for _, e := range err.Errors() {
		if msg, ok := want[e.Field()]; ok && e.Error() != msg {
			t.Errorf("%s message = %q, want %q", e.Field(), e.Error(), msg)
		}
	}
	if len(err.Errors()) != 2 {
		t.Errorf("got %d errors, want 2", len(err.Errors()))
	}
}
