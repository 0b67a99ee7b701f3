package model

import (
	"errors"
	"testing"
)

func validDraft() Draft {
	return Draft{
		Name:        "Trattoria Roma",
		Address:     "12 Long Acre, London",
		Description: "Family-run pasta kitchen with a wood oven.",
		Latitude:    CoordOf(51.5),
		Longitude:   CoordOf(-0.12),
		Cuisine:     CuisineItalian,
		PriceRange:  PriceModerate,
	}
}

func TestValidateDraftAcceptsValidDraft(t *testing.T) {
	d := validDraft()
	d.Name = "  Trattoria Roma  "

	got, err := ValidateDraft(d)
	if err != nil {
		t.Fatalf("ValidateDraft: %v", err)
	}
	if got.Name != "Trattoria Roma" {
		t.Errorf("name = %q, want trimmed", got.Name)
	}
	if got.Latitude != 51.5 || got.Longitude != -0.12 {
		t.Errorf("coords = %v,%v", got.Latitude, got.Longitude)
	}
	if got.ImageURL != "" {
		t.Errorf("imageUrl = %q, want empty", got.ImageURL)
	}
}

func TestValidateDraftRules(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Draft)
		wantField string
	}{
		{name: "name too short", mutate: func(d *Draft) { d.Name = "ab" }, wantField: "name"},
		{name: "name three chars", mutate: func(d *Draft) { d.Name = "abc" }},
		{name: "name blank after trim", mutate: func(d *Draft) { d.Name = "     " }, wantField: "name"},
		{name: "address short", mutate: func(d *Draft) { d.Address = "1 Road" }, wantField: "address"},
		{name: "description short", mutate: func(d *Draft) { d.Description = "tasty" }, wantField: "description"},
		{name: "latitude 91", mutate: func(d *Draft) { d.Latitude = CoordOf(91) }, wantField: "latitude"},
		{name: "latitude 90", mutate: func(d *Draft) { d.Latitude = CoordOf(90) }},
		{name: "latitude -90", mutate: func(d *Draft) { d.Latitude = CoordOf(-90) }},
		{name: "latitude unset", mutate: func(d *Draft) { d.Latitude = Coord{} }, wantField: "latitude"},
		{name: "latitude text", mutate: func(d *Draft) { d.Latitude = ParseCoord("north") }, wantField: "latitude"},
		{name: "longitude -181", mutate: func(d *Draft) { d.Longitude = CoordOf(-181) }, wantField: "longitude"},
		{name: "longitude -180", mutate: func(d *Draft) { d.Longitude = CoordOf(-180) }},
		{name: "cuisine unset", mutate: func(d *Draft) { d.Cuisine = "" }, wantField: "cuisine"},
		{name: "cuisine unknown", mutate: func(d *Draft) { d.Cuisine = "Thai" }, wantField: "cuisine"},
		{name: "price unknown", mutate: func(d *Draft) { d.PriceRange = "$$" }, wantField: "priceRange"},
		{name: "price luxury", mutate: func(d *Draft) { d.PriceRange = PriceLuxury }},
		{name: "image url invalid", mutate: func(d *Draft) { d.ImageURL = "not a url" }, wantField: "imageUrl"},
		{name: "image url valid", mutate: func(d *Draft) { d.ImageURL = "https://img.example.com/a.jpg" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			_, err := ValidateDraft(d)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want *FieldError", err)
			}
			if fe.Field != tt.wantField {
				t.Errorf("field = %q, want %q", fe.Field, tt.wantField)
			}
			if fe.Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestValidateDraftReportsFirstFieldOnly(t *testing.T) {
	d := validDraft()
	d.Name = "x"
	d.Latitude = ParseCoord("abc")
	d.PriceRange = ""

	_, err := ValidateDraft(d)
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v", err)
	}
	if fe.Field != "name" {
		t.Errorf("field = %q, want name", fe.Field)
	}
	if fe.Error() != "Restaurant name must be at least 3 characters." {
		t.Errorf("message = %q", fe.Error())
	}
}

func TestParseCoord(t *testing.T) {
	tests := []struct {
		in      string
		wantSet bool
		wantNum bool
		want    float64
	}{
		{in: "", wantSet: false},
		{in: "  ", wantSet: false},
		{in: "51.509865", wantSet: true, wantNum: true, want: 51.509865},
		{in: "-0.118092", wantSet: true, wantNum: true, want: -0.118092},
		{in: "12a", wantSet: true},
	}
	for _, tt := range tests {
		c := ParseCoord(tt.in)
		if c.IsSet() != tt.wantSet {
			t.Errorf("ParseCoord(%q).IsSet() = %v", tt.in, c.IsSet())
		}
		v, ok := c.Value()
		if ok != tt.wantNum || v != tt.want {
			t.Errorf("ParseCoord(%q).Value() = %v,%v", tt.in, v, ok)
		}
	}
	if got := ParseCoord("12a").String(); got != "12a" {
		t.Errorf("invalid coord String() = %q", got)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ total, limit, want int }{
		{28, 9, 4},
		{27, 9, 3},
		{0, 9, 0},
		{1, 9, 1},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d,%d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestGeoPointIsLongitudeFirst(t *testing.T) {
	p := NewGeoPoint(51.5, -0.12)
	if p.Coordinates[0] != -0.12 || p.Coordinates[1] != 51.5 {
		t.Fatalf("coordinates = %v", p.Coordinates)
	}
	if p.Latitude() != 51.5 || p.Longitude() != -0.12 {
		t.Fatalf("accessors = %v,%v", p.Latitude(), p.Longitude())
	}
}
