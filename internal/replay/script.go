package replay

import (
	"errors"
	"fmt"
	"io"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScript is returned when a register script cannot be decoded or fails validation.
var ErrInvalidScript = errors.New("invalid script")

// Step operations.
const (
	OpAdd      = "add"
	OpUpdate   = "update"
	OpRemove   = "remove"
	OpVoid     = "void"
	OpCheckout = "checkout"
)

// Product is a catalog entry declared by a script.
type Product struct {
	SKU   string `yaml:"sku" validate:"required"`
	Name  string `yaml:"name"`
	Price string `yaml:"price" validate:"required"`
}

// Step is one register action.
type Step struct {
	Op       string `yaml:"op" validate:"required,oneof=add update remove void checkout"`
	SKU      string `yaml:"sku" validate:"required_if=Op add,required_if=Op update,required_if=Op remove"`
	Quantity *int   `yaml:"quantity" validate:"required_if=Op update"`
	Payment  string `yaml:"payment" validate:"required_if=Op checkout"`
}

// Script is a replayable register session.
type Script struct {
	Cashier  string    `yaml:"cashier"`
	TaxRate  string    `yaml:"tax_rate"`
	Products []Product `yaml:"products" validate:"dive"`
	Steps    []Step    `yaml:"steps" validate:"required,min=1,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load decodes and validates a YAML script.
func Load(r io.Reader) (Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, fmt.Errorf("empty script: %w", ErrInvalidScript)
		}
		return Script{}, fmt.Errorf("decode: %v: %w", err, ErrInvalidScript)
	}
	for i := range s.Steps {
		s.Steps[i].Op = strings.ToLower(strings.TrimSpace(s.Steps[i].Op))
	}
	if err := validate.Struct(s); err != nil {
		return Script{}, fmt.Errorf("validate: %v: %w", describe(err), ErrInvalidScript)
	}
	return s, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
