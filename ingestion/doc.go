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

// Package ingestion fetches a filing on demand and persists its fragments.
//
// The Pipeline asks the fetch+extract collaborator for a summary and a set of
// text fragments, then hands each fragment to a FragmentStore. Stores run
// concurrently on a bounded worker pool shared by every caller of the pipeline.
// A fragment that fails to store is logged and skipped; the summary is returned
// to the caller regardless of how many fragments were persisted.
package ingestion
