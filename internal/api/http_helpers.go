package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseAmountCents converts a decimal string with up to 2 fractional
// digits into minor units. The result must be strictly positive.
func parseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount required")
	}

	neg := false
	if s[0] == '+' {
		s = s[1:]
	} else if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid amount")
	}

	intPart := parts[0]
	frac := "00"
	if len(parts) == 2 {
		if len(parts[1]) > 2 {
			return 0, fmt.Errorf("amount supports up to 2 decimals")
		}
		frac = parts[1] + strings.Repeat("0", 2-len(parts[1]))
	}

	// The fractional part must be plain digits; ParseInt alone would
	// also accept a second sign here.
	for i := 0; i < len(frac); i++ {
		if frac[i] < '0' || frac[i] > '9' {
			return 0, fmt.Errorf("invalid amount fractional")
		}
	}

	ip, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || ip < 0 {
		return 0, fmt.Errorf("invalid amount integer")
	}

	fp, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount fractional")
	}

	if ip > (math.MaxInt64-fp)/100 {
		return 0, fmt.Errorf("amount too large")
	}

	total := ip*100 + fp
	if neg {
		total = -total
	}

	if total <= 0 {
		return 0, fmt.Errorf("amount must be > 0")
	}

	return total, nil
}

// formatAmount renders minor units as a decimal string with 2 digits.
func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
