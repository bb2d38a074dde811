package importer

import (
	"strconv"
	"strings"
	"time"
)

// DateFormats lists the supported format tokens, in the order offered to the
// user.
var DateFormats = []string{
	"MM/DD/YYYY",
	"DD/MM/YYYY",
	"YYYY-MM-DD",
	"MM/DD/YY",
	"DD/MM/YY",
	"MM-DD-YYYY",
	"YYYY.MM.DD",
}

// serialEpoch is the spreadsheet day-serial origin. Serials 60 and below get
// an extra day to compensate for the serial scheme treating 1900 as a leap
// year, so modern serials line up with real calendar dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// FormatDate converts a raw spreadsheet cell into an ISO YYYY-MM-DD string.
//
// Numeric cells are interpreted as epoch-day serials regardless of the chosen
// format token. Text cells are split according to the token's field order
// after separator normalization, month/day left-padded and two-digit years
// expanded with a "20" prefix.
//
// FormatDate never fails: any value it cannot interpret is returned
// unchanged, so a bad row shows up as-is in the preview instead of aborting
// it. Batch submission re-validates dates strictly.
func FormatDate(raw any, format string) string {
	if serial, ok := numericCell(raw); ok {
		return serialToISO(serial)
	}

	dateStr := strings.TrimSpace(cellString(raw))
	if dateStr == "" {
		return dateStr
	}

	var year, month, day string
	switch format {
	case "MM/DD/YYYY", "MM/DD/YY":
		parts := splitSlashed(dateStr)
		if len(parts) != 3 {
			return dateStr
		}
		month, day, year = pad(parts[0]), pad(parts[1]), expandYear(parts[2])
	case "DD/MM/YYYY", "DD/MM/YY":
		parts := splitSlashed(dateStr)
		if len(parts) != 3 {
			return dateStr
		}
		day, month, year = pad(parts[0]), pad(parts[1]), expandYear(parts[2])
	case "YYYY-MM-DD":
		parts := strings.Split(dateStr, "-")
		if len(parts) != 3 {
			return dateStr
		}
		year, month, day = expandYear(parts[0]), pad(parts[1]), pad(parts[2])
	case "MM-DD-YYYY":
		parts := strings.Split(dateStr, "-")
		if len(parts) != 3 {
			return dateStr
		}
		month, day, year = pad(parts[0]), pad(parts[1]), expandYear(parts[2])
	case "YYYY.MM.DD":
		parts := splitSlashed(dateStr)
		if len(parts) != 3 {
			return dateStr
		}
		year, month, day = expandYear(parts[0]), pad(parts[1]), pad(parts[2])
	default:
		return dateStr
	}

	if !allDigits(year) || !allDigits(month) || !allDigits(day) {
		return dateStr
	}
	return year + "-" + month + "-" + day
}

// numericCell reports whether the cell carries a number, as produced by
// spreadsheet exports for date serials.
func numericCell(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func serialToISO(serial float64) string {
	days := int(serial)
	if days <= 60 {
		days++
	}
	return serialEpoch.AddDate(0, 0, days).Format("2006-01-02")
}

// splitSlashed normalizes dot separators to slashes before splitting, so
// "31.12.2023" and "31/12/2023" parse the same way.
func splitSlashed(s string) []string {
	return strings.Split(strings.ReplaceAll(s, ".", "/"), "/")
}

func pad(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func expandYear(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 2 {
		return "20" + s
	}
	return s
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

func cellString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(strconv.FormatFloat(toFloat(v), 'f', -1, 64))
	}
}

func toFloat(v any) float64 {
	if f, ok := numericCell(v); ok {
		return f
	}
	return 0
}
