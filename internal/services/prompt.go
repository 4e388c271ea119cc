package services

import (
	"fmt"
	"strings"

	"finsight-go-api/internal/format"
	"finsight-go-api/internal/models"
)

// maxSummaryRunes caps the company description carried into the prompt.
const maxSummaryRunes = 600

// SystemPrompt sets the analyst persona for every completion.
const SystemPrompt = "You are an objective financial analyst. Provide nuanced, data-driven investment insights."

// BuildPrompt renders the user message from the snapshot and search results.
// With no results the web context block and the citation requirement are left out.
func BuildPrompt(snapshot *models.MarketSnapshot, results []models.SearchResult) string {
	var b strings.Builder
	cur := snapshot.Currency
	f := snapshot.Fundamentals

	b.WriteString("Provide a comprehensive, multi-source investment analysis with a strong emphasis on verifiable facts")
	if snapshot.CompanyName != "" {
		fmt.Fprintf(&b, " for %s (%s)", snapshot.CompanyName, snapshot.Symbol)
	} else {
		fmt.Fprintf(&b, " for %s", snapshot.Symbol)
	}
	b.WriteString(":\n\n")

	b.WriteString("Stock Fundamentals:\n")
	fmt.Fprintf(&b, "- Current Price: %s\n", format.Money(snapshot.CurrentPrice, cur))
	fmt.Fprintf(&b, "- 52-Week Range: %s - %s\n", format.OptionalMoney(snapshot.Low52Week, cur), format.OptionalMoney(snapshot.High52Week, cur))
	fmt.Fprintf(&b, "- Market Cap: %s\n", format.Compact(f.MarketCap, cur))
	fmt.Fprintf(&b, "- P/E Ratio: %s\n", format.Number(f.PERatio, 2))
	fmt.Fprintf(&b, "- Dividend Yield: %s\n", format.Ratio(f.DividendYield))
	if f.EPS.Valid {
		fmt.Fprintf(&b, "- EPS: %s\n", format.Number(f.EPS, 2))
	}
	if f.Beta.Valid {
		fmt.Fprintf(&b, "- Beta: %s\n", format.Number(f.Beta, 2))
	}
	if f.Sector != "" {
		fmt.Fprintf(&b, "- Sector: %s", f.Sector)
		if f.Industry != "" {
			fmt.Fprintf(&b, " / %s", f.Industry)
		}
		b.WriteString("\n")
	}
	if _, pct, ok := snapshot.PeriodChange(); ok {
		first := snapshot.History[0].Date.Format("2006-01-02")
		last := snapshot.History[len(snapshot.History)-1].Date.Format("2006-01-02")
		fmt.Fprintf(&b, "- Price Change (%s to %s): %s\n", first, last, format.SignedPercent(pct))
	}

	if summary := businessSummary(f.Description); summary != "" {
		fmt.Fprintf(&b, "\nBusiness Summary:\n%s\n", summary)
	}

	if len(results) > 0 {
		b.WriteString("\nRecent Web Search Context:\n")
		for i, r := range results {
			fmt.Fprintf(&b, "Source %d: %s (%s)\n", i+1, r.Title, r.Source)
			fmt.Fprintf(&b, "Snippet: %s\n", r.Snippet)
			fmt.Fprintf(&b, "Link: %s\n", r.URL)
		}
	}

	requirements := []string{
		"Synthesize information from stock data and web sources",
		"Provide a balanced investment perspective",
		"Highlight key risks and opportunities",
		"Use clear, evidence-based language",
	}
	if len(results) > 0 {
		requirements = append(requirements, "Cite sources where possible")
	} else {
		requirements[0] = "Synthesize information from the stock data"
	}

	b.WriteString("\nAnalysis Requirements:\n")
	for i, r := range requirements {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}

	b.WriteString("\nFormat the analysis as a professional investment report in markdown with clear sections and actionable insights.")
	return b.String()
}

func businessSummary(desc string) string {
	desc = strings.Join(strings.Fields(desc), " ")
	runes := []rune(desc)
	if len(runes) <= maxSummaryRunes {
		return desc
	}
	return strings.TrimSpace(string(runes[:maxSummaryRunes])) + "..."
}
