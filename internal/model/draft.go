package model

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type coordKind int

const (
	coordUnset coordKind = iota
	coordValue
	coordInvalid
)

// Coord is a form coordinate: unset, a number, or text that is not a number.
type Coord struct {
	kind  coordKind
	value float64
	raw   string
}

// CoordOf returns a set coordinate.
func CoordOf(v float64) Coord {
	return Coord{kind: coordValue, value: v}
}

// ParseCoord interprets raw form input. Empty input is unset.
func ParseCoord(s string) Coord {
	s = strings.TrimSpace(s)
	if s == "" {
		return Coord{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Coord{kind: coordInvalid, raw: s}
	}
	return CoordOf(v)
}

// Value returns the number and whether the coordinate holds one.
func (c Coord) Value() (float64, bool) {
	return c.value, c.kind == coordValue
}

// IsSet reports whether any input was given.
func (c Coord) IsSet() bool { return c.kind != coordUnset }

// String renders the coordinate back into form text.
func (c Coord) String() string {
	switch c.kind {
	case coordValue:
		return strconv.FormatFloat(c.value, 'f', -1, 64)
	case coordInvalid:
		return c.raw
	default:
		return ""
	}
}

// Draft is an in-progress restaurant submission held by the add form.
type Draft struct {
	Name        string
	Address     string
	Description string
	Latitude    Coord
	Longitude   Coord
	Cuisine     Cuisine
	PriceRange  PriceRange
	ImagePath   string
	ImageURL    string
}

// IsEmpty reports whether the user has entered anything at all.
func (d Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Name) == "" &&
		strings.TrimSpace(d.Address) == "" &&
		strings.TrimSpace(d.Description) == "" &&
		!d.Latitude.IsSet() && !d.Longitude.IsSet() &&
		d.Cuisine == "" && d.PriceRange == "" &&
		strings.TrimSpace(d.ImagePath) == "" &&
		strings.TrimSpace(d.ImageURL) == ""
}

// FieldError reports the first rule a draft violates.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

var fieldOrder = []string{"name", "address", "description", "latitude", "longitude", "cuisine", "priceRange", "imageUrl"}

var fieldMessages = map[string]string{
	"name":        "Restaurant name must be at least 3 characters.",
	"address":     "A detailed address is required.",
	"description": "A brief description is required (min 20 chars).",
	"latitude":    "Latitude must be between -90 and 90.",
	"longitude":   "Longitude must be between -180 and 180.",
	"cuisine":     "Please select a valid cuisine type.",
	"priceRange":  "Please select a valid price range.",
	"imageUrl":    "Must be a valid URL if present",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateDraft trims and coerces a draft into a submission. On failure it
// returns a *FieldError for the first violated field in form order.
func ValidateDraft(d Draft) (NewRestaurant, error) {
	r := NewRestaurant{
		Name:        strings.TrimSpace(d.Name),
		Address:     strings.TrimSpace(d.Address),
		Description: strings.TrimSpace(d.Description),
		Cuisine:     d.Cuisine,
		PriceRange:  d.PriceRange,
		ImageURL:    strings.TrimSpace(d.ImageURL),
	}
	r.Latitude, _ = d.Latitude.Value()
	r.Longitude, _ = d.Longitude.Value()

	var errs []*FieldError
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return NewRestaurant{}, err
		}
		for _, fe := range verrs {
			errs = append(errs, &FieldError{Field: fe.Field(), Message: fieldMessages[fe.Field()]})
		}
	}
	if fe := coordError("latitude", "Latitude", d.Latitude); fe != nil {
		errs = append(errs, fe)
	}
	if fe := coordError("longitude", "Longitude", d.Longitude); fe != nil {
		errs = append(errs, fe)
	}

	if len(errs) > 0 {
		sort.SliceStable(errs, func(i, j int) bool {
			return fieldIndex(errs[i].Field) < fieldIndex(errs[j].Field)
		})
		return NewRestaurant{}, errs[0]
	}
	return r, nil
}

func coordError(field, label string, c Coord) *FieldError {
	switch c.kind {
	case coordUnset:
		return &FieldError{Field: field, Message: label + " is required."}
	case coordInvalid:
		return &FieldError{Field: field, Message: label + " must be a number."}
	}
	return nil
}

func fieldIndex(field string) int {
	for i, f := range fieldOrder {
		if f == field {
			return i
		}
	}
	return len(fieldOrder)
}
