package forecast

import (
	"fmt"
	"strings"

	"news-atlas/internal/models"
)

const forecastSystemPrompt = "You are a financial analyst. Always respond with valid JSON only."

func articleSource(a models.Article) string {
	if strings.TrimSpace(a.Source) == "" {
		return "Unknown"
	}
	return a.Source
}

func articleTitle(a models.Article) string {
	if strings.TrimSpace(a.Title) == "" {
		return "N/A"
	}
	return a.Title
}

func formatBaselines(symbols []string, baselines map[string][]float64) string {
	lines := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		prices, ok := baselines[sym]
		if !ok {
			continue
		}
		parts := make([]string, len(prices))
		for i, p := range prices {
			parts[i] = fmt.Sprintf("$%.2f", p)
		}
		lines = append(lines, fmt.Sprintf("%s: [%s]", sym, strings.Join(parts, ", ")))
	}
	if len(lines) == 0 {
		return "N/A"
	}
	return strings.Join(lines, "\n")
}

func buildForecastPrompt(symbols []string, article models.Article, baselines map[string][]float64, horizon int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are modeling realistic stock market behavior. Below are statistical baseline predictions for the next %d weeks. Produce REALISTIC, VOLATILE weekly prices that reflect the article's impact.

Do NOT output clean, monotone or linearly increasing sequences. Real markets move up and down unexpectedly.

ARTICLE: %s
Source: %s
Content: %s

BASELINE PREDICTIONS (%d weeks ahead):
%s

TARGET ASSETS: %s
`, horizon, articleTitle(article), articleSource(article), article.Body(), horizon, formatBaselines(symbols, baselines), strings.Join(symbols, ", "))

	fmt.Fprintf(&sb, `
Instructions:
1. Stay within ±2-3%% of the baseline in week 1.
2. Add market noise: week-to-week swings of ±3-8%% are normal.
3. Include reversals and unexpected dips.
4. Bias the direction by the article's sentiment, keeping the volatility.
5. NO MONOTONE sequences: every series needs both ups and downs.
6. Give exactly %d prices per asset and ONE short explanation (1-2 sentences).
7. Only include assets the article is relevant to. Leave the others out.

Return ONLY valid JSON in this format:
{
    "predictions": {
        "AAPL": {
            "future_prices": [149.80, 152.15, 150.45, 153.20, 151.90, 154.60, 152.30, 155.75],
            "explanation": "Strong sector momentum with realistic volatility and pullbacks."
        }
    }
}`, horizon)
	return sb.String()
}
