package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidAmount indicates an amount that is not a number after cleaning.
var ErrInvalidAmount = errors.New("invalid amount")

var nonAmountChars = regexp.MustCompile(`[^\d.]`)

// chinaTime is the zone afdian reports payment times in.
var chinaTime = time.FixedZone("CST", 8*60*60)

// timestampLayout is the CSV export's date format, also used for API payment times.
const timestampLayout = "2006-01-02 15:04:05"

// ParseAmount strips everything except digits and '.' and converts the rest.
// An empty result converts to zero.
func ParseAmount(raw string) (float64, error) {
	cleaned := nonAmountChars.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	return v, nil
}

// flexAmount decodes an amount sent either as a JSON string ("5.00") or a number.
type flexAmount float64

func (a *flexAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}

	v, err := ParseAmount(raw)
	if err != nil {
		return err
	}

	*a = flexAmount(v)

	return nil
}

// flexTime decodes a payment time sent as unix seconds or as a date string.
type flexTime string

func (t *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			*t = flexTime(formatUnix(secs))
			return nil
		}

		*t = flexTime(s)

		return nil
	}

	secs, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}

	*t = flexTime(formatUnix(secs))

	return nil
}

func formatUnix(secs int64) string {
	if secs <= 0 {
		return ""
	}

	return time.Unix(secs, 0).In(chinaTime).Format(timestampLayout)
}
