// Package schema carries the toggle state a packet record's fields
// consult while being written or read: earlier fields set booleans and
// small variant tags, and later optional or multi-enum fields gate on
// them. There is no reflection or tag-based framework here — toggles
// are named strings set and read in field-declaration order, mirroring
// how the wire layout itself works.
package schema

import (
	"strconv"
	"strings"

	"rubin.dev/plabble/bitio"
)

// Config is the mutable toggle map threaded through one record's
// encode or decode pass. Build one with NewConfig: the zero value's
// maps are nil, so SetToggle and SetVariant on it panic.
type Config struct {
	toggles  map[string]bool
	variants map[string]int64
}

func NewConfig() *Config {
	return &Config{
		toggles:  make(map[string]bool),
		variants: make(map[string]int64),
	}
}

// SetToggle records a boolean toggle set by a field (e.g.
// "use_encryption" becomes visible to every later field in the record).
func (c *Config) SetToggle(name string, value bool) {
	c.toggles[name] = value
}

// Toggle reports a previously set boolean toggle. A toggle that was
// never set reads as false, exactly as it does through ToggledBy.
func (c *Config) Toggle(name string) bool {
	return c.toggles[name]
}

// SetVariant records the running value of a discriminator field (e.g.
// "packet_type") for later variant_by / toggled_by_variant lookups.
func (c *Config) SetVariant(name string, value int64) {
	c.variants[name] = value
}

func (c *Config) Variant(name string) (int64, bool) {
	v, ok := c.variants[name]
	return v, ok
}

// ToggledBy evaluates one of the three forms used throughout the
// record definitions:
//
//	"name"       - present iff toggle "name" is true
//	"!name"      - present iff toggle "name" is false
//	"name=1|2|3" - present iff the variant "name" equals one of the
//	               listed integers
//
// An expression naming a toggle or variant that was never set
// evaluates to false rather than erroring: a field simply never became
// eligible, which matches how a record with certain flags unset simply
// omits the fields they would have gated.
func (c *Config) ToggledBy(expr string) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, bitio.NewError(bitio.ErrUnknownToggle, "empty toggled_by expression")
	}

	if strings.HasPrefix(expr, "!") {
		name := expr[1:]
		return !c.toggles[name], nil
	}

	if eq := strings.IndexByte(expr, '='); eq >= 0 {
		name := expr[:eq]
		rest := expr[eq+1:]
		want, ok := c.variants[name]
		if !ok {
			return false, nil
		}
		for _, part := range strings.Split(rest, "|") {
			n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return false, bitio.NewError(bitio.ErrUnknownToggle, "invalid variant literal in toggled_by: "+part)
			}
			if n == want {
				return true, nil
			}
		}
		return false, nil
	}

	return c.toggles[expr], nil
}

// MustToggledBy panics on a malformed expression; only safe to use with
// literal, compile-time-known expressions written in calling code.
func (c *Config) MustToggledBy(expr string) bool {
	v, err := c.ToggledBy(expr)
	if err != nil {
		panic(err)
	}
	return v
}

// Reset clears all toggles and variants, for reuse across records.
func (c *Config) Reset() {
	for k := range c.toggles {
		delete(c.toggles, k)
	}
	for k := range c.variants {
		delete(c.variants, k)
	}
}
