// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lodestar/internal/recommend"
	"github.com/tomtom215/lodestar/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// interactionRequest is the body of the interaction routes.
type interactionRequest struct {
	ItemID string `json:"item_id" validate:"required,max=256"`
	Kind   string `json:"kind" validate:"required,interaction"`
}

// preferencesRequest is the body of PUT /users/{userID}/preferences.
type preferencesRequest struct {
	Categories    []string `json:"categories" validate:"max=50,dive,required,max=128"`
	Keywords      []string `json:"keywords" validate:"max=100,dive,tagname,max=128"`
	SourceTypes   []string `json:"source_types" validate:"max=4,dive,sourcetype"`
	MinTrustScore int      `json:"min_trust_score" validate:"gte=0,lte=100"`
	Language      string   `json:"language" validate:"omitempty,min=2,max=16"`
}

// toPreferences converts a validated request.
func (p *preferencesRequest) toPreferences() *recommend.Preferences {
	sources := make([]recommend.SourceType, 0, len(p.SourceTypes))
	for _, s := range p.SourceTypes {
		sources = append(sources, recommend.SourceType(s))
	}
	categories := p.Categories
	if categories == nil {
		categories = []string{}
	}
	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return &recommend.Preferences{
		Categories:    categories,
		Keywords:      keywords,
		SourceTypes:   sources,
		MinTrustScore: p.MinTrustScore,
		Language:      p.Language,
	}
}

// decodeBody decodes a JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &recommend.ValidationError{Field: "body", Reason: fmt.Sprintf("exceeds %d bytes", maxBodyBytes)}
		case errors.Is(err, io.EOF):
			return &recommend.ValidationError{Field: "body", Reason: "must not be empty"}
		default:
			return &recommend.ValidationError{Field: "body", Reason: "invalid JSON: " + err.Error()}
		}
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// parseLimit reads ?limit=. A missing value yields def; anything that is not
// an integer is rejected. Range checks are left to the engine.
func parseLimit(q url.Values, def int) (int, error) {
	raw := strings.TrimSpace(q.Get("limit"))
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &recommend.ValidationError{Field: "limit", Reason: fmt.Sprintf("must be an integer, got %q", raw)}
	}
	return limit, nil
}

// parseTags reads tag names from ?tags=a,b and repeated ?tags= parameters.
// Blank entries are dropped; normalisation is left to the engine.
func parseTags(q url.Values) []string {
	var tags []string
	for _, v := range q["tags"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}
