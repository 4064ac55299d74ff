package domain

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NullFloat nullable число: пустая ячейка CSV и NULL в базе.
type NullFloat struct {
	sql.NullFloat64
}

func NewNullFloat(v float64) NullFloat {
	return NullFloat{sql.NullFloat64{Float64: v, Valid: true}}
}

func (n *NullFloat) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if IsNullText(s) {
		*n = NullFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", s, err)
	}
	// nan и inf в выгрузках означают отсутствие измерения
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*n = NullFloat{}
		return nil
	}
	*n = NewNullFloat(v)
	return nil
}

func (n NullFloat) MarshalText() ([]byte, error) {
	if !n.Valid {
		return []byte{}, nil
	}
	return []byte(strconv.FormatFloat(n.Float64, 'f', -1, 64)), nil
}

func (n NullFloat) Value() (driver.Value, error) {
	return n.NullFloat64.Value()
}

// Ptr удобен для сериализации в json.
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// NullInt nullable целое, терпит "2004.0" из выгрузок pandas.
type NullInt struct {
	sql.NullInt64
}

func NewNullInt(v int64) NullInt {
	return NullInt{sql.NullInt64{Int64: v, Valid: true}}
}

func (n *NullInt) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if IsNullText(s) {
		*n = NullInt{}
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = NewNullInt(v)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("parse int %q: invalid syntax", s)
	}
	*n = NewNullInt(int64(f))
	return nil
}

func (n NullInt) MarshalText() ([]byte, error) {
	if !n.Valid {
		return []byte{}, nil
	}
	return []byte(strconv.FormatInt(n.Int64, 10)), nil
}

func (n NullInt) Value() (driver.Value, error) {
	return n.NullInt64.Value()
}

// IsNullText пустая ячейка или маркер пропуска (NaN, NA, null).
func IsNullText(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "na", "null", "none":
		return true
	}
	return false
}
