package domain

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Record is one raw connection row as delivered by a source. Fields are kept
// as strings so that a missing or malformed value can be reported per row.
type Record struct {
	Row      int    `json:"row"`
	StationA string `json:"station_A" validate:"required"`
	StationB string `json:"station_B" validate:"required"`
	Line     string `json:"line" validate:"required"`
	Time     string `json:"time" validate:"required"`

	// Defect is set by a source that could not read the row at all.
	Defect string `json:"-"`
}

// Connection is a validated Record.
type Connection struct {
	StationA string
	StationB string
	Line     string
	Minutes  float64 `json:"time" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse trims and validates the record. Every failure is a *MalformedRecordError.
func (r Record) Parse() (Connection, error) {
	if r.Defect != "" {
		return Connection{}, &MalformedRecordError{Row: r.Row, Reason: r.Defect}
	}

	trimmed := Record{
		Row:      r.Row,
		StationA: strings.TrimSpace(r.StationA),
		StationB: strings.TrimSpace(r.StationB),
		Line:     strings.TrimSpace(r.Line),
		Time:     strings.TrimSpace(r.Time),
	}

	if err := validate.Struct(trimmed); err != nil {
		return Connection{}, &MalformedRecordError{Row: r.Row, Reason: describeValidation(err)}
	}

	minutes, err := strconv.ParseFloat(trimmed.Time, 64)
	if err != nil || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return Connection{}, &MalformedRecordError{Row: r.Row, Reason: fmt.Sprintf("invalid time %q", trimmed.Time)}
	}

	conn := Connection{
		StationA: trimmed.StationA,
		StationB: trimmed.StationB,
		Line:     trimmed.Line,
		Minutes:  minutes,
	}
	if err := validate.Struct(conn); err != nil {
		return Connection{}, &MalformedRecordError{Row: r.Row, Reason: fmt.Sprintf("negative time %q", trimmed.Time)}
	}

	return conn, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return "missing " + strings.Join(missing, ", ")
}
