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

// Package orchestrator answers a stock question end to end.
//
// An Orchestrator resolves the company identifier, fetches a quote while it
// checks the knowledge index, ingests the filing on a miss, assembles a
// bounded generation context and produces a narrative. Every external failure
// short of an internal contract violation is absorbed: the caller always gets
// a narrative, degraded to a template when generation is unavailable.
package orchestrator
