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
)

// Describe renders the reported quote fields as a single line, for prompts
// and fallback text. Missing fields are omitted.
func (q *QuoteSnapshot) Describe() string {
	if q.IsEmpty() {
		return "no quote data available"
	}

	currency := ""
	if q.Currency != nil && *q.Currency != "" {
		currency = " " + *q.Currency
	}

	var parts []string
	if q.Price != nil {
		parts = append(parts, fmt.Sprintf("price %.2f%s", *q.Price, currency))
	}
	if q.PreviousClose != nil {
		parts = append(parts, fmt.Sprintf("previous close %.2f%s", *q.PreviousClose, currency))
	}
	if pct, ok := q.Change(); ok {
		parts = append(parts, fmt.Sprintf("change %+.2f%%", pct))
	}
	if q.Volume != nil {
		parts = append(parts, fmt.Sprintf("volume %d", *q.Volume))
	}
	if q.MarketCap != nil {
		parts = append(parts, fmt.Sprintf("market cap %.0f%s", *q.MarketCap, currency))
	}
	return strings.Join(parts, "; ")
}
