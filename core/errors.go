// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"errors"
	"fmt"
)

// Orchestration errors
var (
	// ErrNoIdentifierFound indicates the query names no resolvable company.
	ErrNoIdentifierFound = errors.New("no identifier found")

	// ErrGenerationFailed indicates the narrative collaborator failed or returned nothing.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInternalContractViolation indicates an assembled context broke its invariants.
	ErrInternalContractViolation = errors.New("internal contract violation")
)

// Domain validation errors
var (
	// ErrInvalidIdentifier indicates an identifier is not 1-5 uppercase alphanumerics.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrSummaryTooLong indicates summary text exceeds the configured cap.
	ErrSummaryTooLong = errors.New("summary exceeds cap")

	// ErrInvalidSummarySource indicates an unknown summary source tag.
	ErrInvalidSummarySource = errors.New("invalid summary source")

	// ErrSourceMismatch indicates the context source differs from the summary source.
	ErrSourceMismatch = errors.New("context source does not match summary source")

	// ErrEmptyContext indicates a nil generation context.
	ErrEmptyContext = errors.New("generation context is nil")
)

// Collaborator names used in CollaboratorUnavailableError.Which.
const (
	CollaboratorIdentifier = "identifier_extraction"
	CollaboratorQuote      = "quote"
	CollaboratorSimilarity = "similarity_search"
	CollaboratorIngestion  = "fetch_extract"
	CollaboratorStorage    = "storage"
	CollaboratorGeneration = "generation"
)

// CollaboratorUnavailableError reports that an external collaborator failed,
// timed out, or answered with something unusable.
type CollaboratorUnavailableError struct {
	Which string
	Err   error
}

func (e *CollaboratorUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("collaborator %s unavailable", e.Which)
	}
	return fmt.Sprintf("collaborator %s unavailable: %v", e.Which, e.Err)
}

func (e *CollaboratorUnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err as a CollaboratorUnavailableError for which.
func Unavailable(which string, err error) error {
	return &CollaboratorUnavailableError{Which: which, Err: err}
}

// IngestionFailedError reports that fetch+extract did not produce a usable filing.
type IngestionFailedError struct {
	Reason string
	Err    error
}

func (e *IngestionFailedError) Error() string {
	if e.Err == nil {
		return "ingestion failed: " + e.Reason
	}
	return fmt.Sprintf("ingestion failed: %s: %v", e.Reason, e.Err)
}

func (e *IngestionFailedError) Unwrap() error {
	return e.Err
}
