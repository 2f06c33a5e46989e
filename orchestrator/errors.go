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

package orchestrator

import "errors"

var (
	// ErrExtractorRequired is returned when a ticker extractor is not provided.
	ErrExtractorRequired = errors.New("ticker extractor required")

	// ErrQuoteSourceRequired is returned when a quote source is not provided.
	ErrQuoteSourceRequired = errors.New("quote source required")

	// ErrSearcherRequired is returned when a knowledge searcher is not provided.
	ErrSearcherRequired = errors.New("knowledge searcher required")

	// ErrIngesterRequired is returned when an ingester is not provided.
	ErrIngesterRequired = errors.New("ingester required")

	// ErrGeneratorRequired is returned when a narrative generator is not provided.
	ErrGeneratorRequired = errors.New("narrative generator required")

	// ErrAnswerCancelled is returned when the caller's context ends mid-answer.
	ErrAnswerCancelled = errors.New("answer cancelled")
)
