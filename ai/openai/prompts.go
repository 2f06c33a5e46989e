package openai

import (
	"github.com/tmc/langchaingo/prompts"
)

const tickerPromptTemplate = `Extract the stock ticker symbol from this query: "{{.query}}"

Rules:
- Return ONLY the ticker symbol (e.g., AAPL, MSFT, GOOGL)
- If a company name is mentioned, return its ticker symbol
- Common mappings: Apple->AAPL, Microsoft->MSFT, Google/Alphabet->GOOGL, Amazon->AMZN, Tesla->TSLA, Meta/Facebook->META, Nvidia->NVDA
- If no company or ticker is found, return "NONE"
- Return only the ticker, no other text

Query: {{.query}}
Ticker:`

const briefPromptTemplate = `You are a financial assistant generating a market briefing based on various data sources.

Use the following information to answer the user's query:

Query: {{.query}}
Company Ticker: {{.ticker}}
Stock Data: {{.stock_data}}
Filing Summary: {{.filing_summary}}
Filing Type: {{.filing_type}}
Data Source: {{.data_source}}

Now write a concise, 2-3 sentence answer that combines this information to give the user an update.
Do not invent figures that are not present above.`

var (
	tickerPrompt = prompts.NewPromptTemplate(tickerPromptTemplate, []string{"query"})
	briefPrompt  = prompts.NewPromptTemplate(briefPromptTemplate, []string{
		"query", "ticker", "stock_data", "filing_summary", "filing_type", "data_source",
	})
)
