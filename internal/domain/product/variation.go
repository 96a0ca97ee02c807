package product

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// VariationCategory is the kind of a product variation.
type VariationCategory string

const (
	VariationColor VariationCategory = "color"
	VariationSize  VariationCategory = "size"
)

// Valid reports whether c is one of the allowed categories.
func (c VariationCategory) Valid() bool {
	return c == VariationColor || c == VariationSize
}

const (
	// MaxVariationValueLen is the longest accepted variation value, in characters.
	MaxVariationValueLen = 100
	// MaxVariationPayloadLen bounds the raw submitted payload, in characters.
	MaxVariationPayloadLen = 5000
)

// Variation is a (category, value) attribute owned by exactly one product.
type Variation struct {
	ID        int64
	ProductID int64
	Category  VariationCategory
	Value     string
}

var errMalformedVariations = &VariationError{Index: -1, Message: "Invalid variations data."}

// DecodeVariations parses the two-array variation payload
//
//	{"categories": ["color", "size"], "values": ["Red", "M"]}
//
// into variations in submission order. An empty payload yields no variations.
// The whole payload is rejected with a *VariationError on the first invalid
// entry.
func DecodeVariations(raw string) ([]Variation, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Variation{}, nil
	}
	if n := utf8.RuneCountInString(raw); n > MaxVariationPayloadLen {
		return nil, &VariationError{
			Index:   -1,
			Message: fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", MaxVariationPayloadLen, n),
		}
	}

	data := []byte(raw)
	if !jx.Valid(data) {
		return nil, errMalformedVariations
	}

	d := jx.DecodeBytes(data)
	switch d.Next() {
	case jx.Null:
		return []Variation{}, nil
	case jx.Object:
	default:
		return nil, errMalformedVariations
	}

	var categories, values []string
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "categories":
			return decodeStrings(d, &categories)
		case "values":
			return decodeStrings(d, &values)
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errMalformedVariations
	}

	if len(categories) != len(values) {
		return nil, &VariationError{
			Index:   -1,
			Message: fmt.Sprintf("Got %d variation categories but %d values.", len(categories), len(values)),
		}
	}

	out := make([]Variation, 0, len(categories))
	for i, cat := range categories {
		category := VariationCategory(cat)
		if !category.Valid() {
			return nil, &VariationError{Index: i, Message: fmt.Sprintf("%s is not a valid variation category.", cat)}
		}
		value := values[i]
		if utf8.RuneCountInString(value) > MaxVariationValueLen {
			return nil, &VariationError{Index: i, Message: fmt.Sprintf("%s is too long for variation value.", value)}
		}
		out = append(out, Variation{Category: category, Value: value})
	}
	return out, nil
}

// decodeStrings replaces *dst, so a repeated key keeps only its last value.
func decodeStrings(d *jx.Decoder, dst *[]string) error {
	*dst = nil
	if d.Next() == jx.Null {
		return d.Null()
	}
	return d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.String {
			return errors.New("expected string")
		}
		s, err := d.Str()
		if err != nil {
			return err
		}
		*dst = append(*dst, s)
		return nil
	})
}
