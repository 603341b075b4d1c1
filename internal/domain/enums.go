package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

type Category string

const (
	CategoryCoffee      Category = "Coffee"
	CategoryTea         Category = "Tea"
	CategoryBakery      Category = "Bakery"
	CategoryFood        Category = "Food"
	CategoryMerchandise Category = "Merchandise"
	CategoryOther       Category = "Other"
)

var Categories = []Category{
	CategoryCoffee, CategoryTea, CategoryBakery, CategoryFood, CategoryMerchandise, CategoryOther,
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Cash"
	PaymentCredit PaymentMethod = "Credit Card"
	PaymentDebit  PaymentMethod = "Debit Card"
	PaymentMobile PaymentMethod = "Mobile Payment"
	PaymentOther  PaymentMethod = "Other"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCredit, PaymentDebit, PaymentMobile, PaymentOther}

// sameLabel folds both sides; a Caser is stateful so one is built per call.
func sameLabel(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(b)
}

// ParseCategory matches a label case-insensitively against the known categories.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if sameLabel(s, string(c)) {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", s)}
}

// ParsePaymentMethod matches a label case-insensitively against the known payment methods.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range PaymentMethods {
		if sameLabel(s, string(m)) {
			return m, nil
		}
	}
	return "", &ValidationError{Field: "payment_method", Reason: fmt.Sprintf("unknown payment method %q", s)}
}

// Valid reports whether c is one of the canonical labels.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	for _, k := range PaymentMethods {
		if k == m {
			return true
		}
	}
	return false
}

// Customization is one free-form key/value attached to an order line.
type Customization struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Customizations keeps insertion order. It is stored as JSON and never
// interpreted by the core.
type Customizations []Customization

func (c Customizations) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]Customization(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Customizations) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("domain: cannot scan %T into Customizations", src)
	}
	var out []Customization
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("domain: decode customizations: %w", err)
	}
	if len(out) == 0 {
		out = nil
	}
	*c = out
	return nil
}

// String renders "k: v, k: v" for receipts.
func (c Customizations) String() string {
	parts := make([]string, 0, len(c))
	for _, kv := range c {
		parts = append(parts, kv.Key+": "+kv.Value)
	}
	return strings.Join(parts, ", ")
}
