// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the configuration loader and the
// HTTP request decoders. Field names in messages come from the struct's json
// tag, falling back to its koanf tag, so errors read the way clients and
// operators spell the field.
//
// # Custom Tags
//
//   - sourcetype: a recommend.SourceType (paper, video, news, manual)
//   - interaction: a recommend.InteractionKind (bookmark, like, view)
//   - tagname: a non-blank tag name without commas
//
// # Usage
//
//	type interactionRequest struct {
//	    ItemID string `json:"item_id" validate:"required"`
//	    Kind   string `json:"kind" validate:"required,interaction"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
