package category

import (
	"path/filepath"
	"strings"

	"github.com/agentstation/designlib/pkg/errors"
)

// Policy selects how a category is carried alongside the stored bytes.
type Policy string

const (
	// PolicyPrefix encodes the category into the store key.
	PolicyPrefix Policy = "prefix"
	// PolicySideTable stores bytes under the bare name; the ledger holds the category.
	PolicySideTable Policy = "sidetable"
)

// Separator joins category and name under PolicyPrefix.
const Separator = "_"

// Codec maps (name, category) to a store key and back.
// A deployment uses exactly one codec.
type Codec interface {
	Encode(name string, c Category) (string, error)
	Decode(key string) (string, Category, error)
	Policy() Policy
}

// NewCodec returns the codec for policy.
func NewCodec(policy Policy) (Codec, error) {
	switch Policy(strings.ToLower(string(policy))) {
	case PolicyPrefix, "":
		return PrefixCodec{}, nil
	case PolicySideTable:
		return SideTableCodec{}, nil
	default:
		return nil, errors.NewValidationError("codec", string(policy), "must be prefix or sidetable")
	}
}

// ValidateName rejects names that cannot be part of a single flat key.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.NewInvalidNameError(name, "name is empty")
	case strings.Contains(name, "/") || strings.ContainsRune(name, filepath.Separator):
		return errors.NewInvalidNameError(name, "name contains a path separator")
	}
	return nil
}

// validateBareKey additionally rejects names that would resolve to a
// directory when used as a key on their own.
func validateBareKey(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if name == "." || name == ".." {
		return errors.NewInvalidNameError(name, "name is a relative path element")
	}
	return nil
}

// PrefixCodec stores files as "<category>_<name>".
type PrefixCodec struct{}

// Policy implements Codec.
func (PrefixCodec) Policy() Policy { return PolicyPrefix }

// Encode implements Codec.
func (PrefixCodec) Encode(name string, c Category) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if !c.Valid() {
		return "", errors.NewValidationError("category", string(c), "not an assignable category")
	}
	return string(c) + Separator + name, nil
}

// Decode implements Codec. Keys without a known category prefix decode to
// (key, Other).
func (PrefixCodec) Decode(key string) (string, Category, error) {
	if err := ValidateName(key); err != nil {
		return "", "", err
	}
	prefix, name, ok := strings.Cut(key, Separator)
	if !ok || name == "" {
		return key, Other, nil
	}
	c := Category(prefix)
	if !c.Valid() {
		return key, Other, nil
	}
	return name, c, nil
}

// SideTableCodec stores files under their bare name.
type SideTableCodec struct{}

// Policy implements Codec.
func (SideTableCodec) Policy() Policy { return PolicySideTable }

// Encode implements Codec.
func (SideTableCodec) Encode(name string, c Category) (string, error) {
	if err := validateBareKey(name); err != nil {
		return "", err
	}
	if !c.Valid() {
		return "", errors.NewValidationError("category", string(c), "not an assignable category")
	}
	return name, nil
}

// Decode implements Codec. The category is unknown without the ledger, so
// Other is returned.
func (SideTableCodec) Decode(key string) (string, Category, error) {
	if err := validateBareKey(key); err != nil {
		return "", "", err
	}
	return key, Other, nil
}
