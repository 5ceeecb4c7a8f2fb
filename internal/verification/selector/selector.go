// Package selector derives 4-byte Ethereum ABI function selectors from
// human-readable signatures such as "transfer(address,uint256)".
package selector

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vietddude/txverify/internal/core/domain"
)

// Size is the length of a function selector in bytes.
const Size = 4

var signatureRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\([A-Za-z0-9_\[\],\s]*\)$`)

// Selector is the first four bytes of keccak256(signature).
type Selector [Size]byte

// Hex returns the 0x-prefixed lower-case form, e.g. "0xa9059cbb".
func (s Selector) Hex() string {
	return hexutil.Encode(s[:])
}

func (s Selector) String() string {
	return s.Hex()
}

// Prefixes reports whether call data starts with this selector.
func (s Selector) Prefixes(input []byte) bool {
	return len(input) >= Size && bytes.Equal(input[:Size], s[:])
}

// Normalize strips every whitespace rune from a signature.
func Normalize(signature string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, signature)
}

// Validate checks the signature grammar after whitespace is stripped.
func Validate(signature string) error {
	normalized := Normalize(signature)
	if normalized == "" {
		return fmt.Errorf("%w: empty signature", domain.ErrInvalidSignature)
	}
	if !signatureRegex.MatchString(normalized) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSignature, signature)
	}
	return nil
}

// Compute returns the selector for a signature.
func Compute(signature string) (Selector, error) {
	if err := Validate(signature); err != nil {
		return Selector{}, err
	}

	var sel Selector
	copy(sel[:], crypto.Keccak256([]byte(Normalize(signature)))[:Size])
	return sel, nil
}

// Cache memoizes Compute. The zero value is ready to use.
type Cache struct {
	entries sync.Map // normalized signature -> Selector
}

// Compute returns the cached selector, computing it on first use.
// Invalid signatures are never cached.
func (c *Cache) Compute(signature string) (Selector, error) {
	key := Normalize(signature)
	if v, ok := c.entries.Load(key); ok {
		return v.(Selector), nil
	}

	sel, err := Compute(signature)
	if err != nil {
		return Selector{}, err
	}
	c.entries.Store(key, sel)
	return sel, nil
}
