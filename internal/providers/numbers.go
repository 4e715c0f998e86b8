package providers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// flexFloat accepts JSON numbers and numeric strings (".265", "4.85", "-.--").
// Unparseable values decode to zero with Valid=false.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = flexFloat{}
		return nil
	}

	s := string(data)
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = flexFloat{}
		return nil
	}
	*f = flexFloat{Value: v, Valid: true}
	return nil
}

func (f flexFloat) Ptr(places int) *float64 {
	if !f.Valid {
		return nil
	}
	v := roundTo(f.Value, places)
	return &v
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// trimLeadingZero renders rate stats the way box scores do: ".265".
func trimLeadingZero(s string) string {
	if strings.HasPrefix(s, "0.") {
		return s[1:]
	}
	return s
}
