package tools

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type currencyReq struct {
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	Amount       float64 `json:"amount"`
}

func registerCurrencyTool(srv *mcp.Server, client *http.Client) {
	tool := &mcp.Tool{
		Name:        "currency_exchange",
		Description: "Convert between currencies using open.er-api.com (no API key required).",
		InputSchema: inputSchema(map[string]any{
			"from_currency": map[string]any{
				"type":        "string",
				"description": "3-letter currency code, e.g. 'USD'",
			},
			"to_currency": map[string]any{
				"type":        "string",
				"description": "3-letter currency code, e.g. 'JPY'",
			},
			"amount": map[string]any{
				"type":        "number",
				"description": "Amount in the source currency (default 1.0)",
			},
		}, []string{"from_currency", "to_currency"}),
	}

	register(srv, tool, func(ctx context.Context, req currencyReq) (any, error) {
		base := strings.ToUpper(strings.TrimSpace(req.FromCurrency))
		quote := strings.ToUpper(strings.TrimSpace(req.ToCurrency))
		if len(base) != 3 || len(quote) != 3 {
			return nil, fmt.Errorf("currency codes must be 3-letter ISO codes (e.g. USD, JPY)")
		}
		amount := req.Amount
		if amount == 0 {
			amount = 1.0
		}
		if amount < 0 {
			return nil, fmt.Errorf("amount must be non-negative")
		}

		var data struct {
			Result            string             `json:"result"`
			Rates             map[string]float64 `json:"rates"`
			TimeLastUpdateUTC string             `json:"time_last_update_utc"`
		}
		endpoint := "https://open.er-api.com/v6/latest/" + base
		if err := getJSON(ctx, client, endpoint, nil, &data); err != nil {
			return nil, err
		}
		if data.Result != "success" {
			return nil, fmt.Errorf("currency exchange API error for %s", base)
		}
		rate, ok := data.Rates[quote]
		if !ok {
			return nil, fmt.Errorf("unsupported currency %q", quote)
		}

		return map[string]any{
			"from":             base,
			"to":               quote,
			"amount":           amount,
			"rate":             rate,
			"converted_amount": math.Round(amount*rate*10000) / 10000,
			"last_update_utc":  data.TimeLastUpdateUTC,
			"source":           "open.er-api.com (no API key required)",
		}, nil
	})
}

type holidaysReq struct {
	CountryCode string `json:"country_code"`
	Year        int    `json:"year"`
}

func registerHolidaysTool(srv *mcp.Server, client *http.Client) {
	tool := &mcp.Tool{
		Name:        "public_holidays",
		Description: "Fetch public holidays for a given country and year using Nager.Date.",
		InputSchema: inputSchema(map[string]any{
			"country_code": map[string]any{
				"type":        "string",
				"description": "2-letter country code, e.g. 'JP'",
			},
			"year": map[string]any{
				"type":        "integer",
				"description": "Year, e.g. 2025 (defaults to the current year)",
			},
		}, []string{"country_code"}),
	}

	register(srv, tool, func(ctx context.Context, req holidaysReq) (any, error) {
		code := strings.ToUpper(strings.TrimSpace(req.CountryCode))
		if len(code) != 2 {
			return nil, fmt.Errorf("country code must be a 2-letter ISO code (e.g. JP)")
		}
		year := req.Year
		if year == 0 {
			year = time.Now().Year()
		}

		var holidays []map[string]any
		endpoint := "https://date.nager.at/api/v3/PublicHolidays/" +
			strconv.Itoa(year) + "/" + url.PathEscape(code)
		if err := getJSON(ctx, client, endpoint, nil, &holidays); err != nil {
			return nil, err
		}

		return map[string]any{
			"country_code": code,
			"year":         year,
			"count":        len(holidays),
			"holidays":     holidays,
			"source":       "date.nager.at (no API key required)",
		}, nil
	})
}
