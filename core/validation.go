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
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxIdentifierLength is the longest accepted ticker symbol.
const MaxIdentifierLength = 5

// identifierTrim lists characters models tend to wrap a bare ticker in.
const identifierTrim = " \t\r\n\"'`.,;:!?*$()[]{}"

// NormalizeIdentifier turns raw extractor output into a canonical identifier.
//
// Normalization rules:
//   - surrounding whitespace, quotes and punctuation are trimmed
//   - "none" in any case maps to NoIdentifier
//   - the result is upper-cased and must match [A-Z0-9]{1,5}
//
// Anything else yields NoIdentifier and an ErrInvalidIdentifier.
func NormalizeIdentifier(raw string) (Identifier, error) {
	cleaned := strings.Trim(raw, identifierTrim)
	if cleaned == "" || strings.EqualFold(cleaned, string(NoIdentifier)) {
		return NoIdentifier, nil
	}

	upper := strings.ToUpper(cleaned)
	if err := ValidateIdentifier(Identifier(upper)); err != nil {
		return NoIdentifier, err
	}
	return Identifier(upper), nil
}

// ValidateIdentifier checks that id is a concrete ticker symbol.
func ValidateIdentifier(id Identifier) error {
	if id.IsNone() {
		return fmt.Errorf("%w: %w", ErrInvalidIdentifier, ErrNoIdentifierFound)
	}
	if len(id) > MaxIdentifierLength {
		return fmt.Errorf("%w: %q longer than %d characters", ErrInvalidIdentifier, id, MaxIdentifierLength)
	}
	for _, r := range id {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidIdentifier, id, r)
		}
	}
	return nil
}

// ValidateGenerationContext checks the invariants of an assembled context.
//
// Validation rules:
//   - Identifier is a concrete ticker symbol
//   - Summary text is at most summaryCap runes
//   - Summary source is known and equals Source
func ValidateGenerationContext(gc *GenerationContext, summaryCap int) error {
	if gc == nil {
		return ErrEmptyContext
	}
	if err := ValidateIdentifier(gc.Identifier); err != nil {
		return err
	}
	if n := utf8.RuneCountInString(gc.Summary.Text); n > summaryCap {
		return fmt.Errorf("%w: %d > %d", ErrSummaryTooLong, n, summaryCap)
	}
	if !gc.Summary.Source.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSummarySource, gc.Summary.Source)
	}
	if gc.Source != gc.Summary.Source {
		return fmt.Errorf("%w: %q != %q", ErrSourceMismatch, gc.Source, gc.Summary.Source)
	}
	return nil
}
