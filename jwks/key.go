package jwks

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// ErrKeyDecode is returned by Decode when a record does not describe a
// usable RSA public key.
var ErrKeyDecode = errors.New("could not decode JSON web key")

// Some providers publish n/e values whose final character carries non-zero
// padding bits. The non-strict raw URL decoder accepts them.
var keyMaterialEncoding = base64.RawURLEncoding

// Key is a single JWKS record.
type Key struct {
	Algorithm  string   `json:"alg"`
	KeyType    string   `json:"kty"`
	Use        string   `json:"use"`
	Modulus    string   `json:"n"`
	Exponent   string   `json:"e"`
	KeyID      string   `json:"kid"`
	Thumbprint string   `json:"x5t"`
	Chain      []string `json:"x5c"`
}

// KeySet is an ordered list of keys decoded from one JWKS document.
type KeySet struct {
	Keys []Key `json:"keys"`
}

// UnmarshalJSON requires the "keys" member to be present.
func (s *KeySet) UnmarshalJSON(data []byte) error {
	var doc struct {
		Keys *[]Key `json:"keys"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Keys == nil {
		return errors.New(`JWKS document has no "keys" member`)
	}
	s.Keys = *doc.Keys
	return nil
}

// ParseKeySet decodes a JWKS document.
func ParseKeySet(data []byte) (*KeySet, error) {
	var set KeySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}
	return &set, nil
}

// Decode turns a record into an RS256 verification key whose key ID is the
// record's kid.
func Decode(record Key) (jwk.Key, error) {
	n, err := keyMaterialEncoding.DecodeString(record.Modulus)
	if err != nil {
		return nil, fmt.Errorf("%w %q: modulus: %w", ErrKeyDecode, record.KeyID, err)
	}
	e, err := keyMaterialEncoding.DecodeString(record.Exponent)
	if err != nil {
		return nil, fmt.Errorf("%w %q: exponent: %w", ErrKeyDecode, record.KeyID, err)
	}

	publicKey, err := rsaPublicKey(n, e)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrKeyDecode, record.KeyID, err)
	}

	key, err := jwk.Import(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrKeyDecode, record.KeyID, err)
	}
	if record.KeyID != "" {
		if err := key.Set(jwk.KeyIDKey, record.KeyID); err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrKeyDecode, record.KeyID, err)
		}
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256()); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrKeyDecode, record.KeyID, err)
	}

	return key, nil
}

func rsaPublicKey(n, e []byte) (*rsa.PublicKey, error) {
	modulus := new(big.Int).SetBytes(n)
	if modulus.Sign() == 0 {
		return nil, errors.New("modulus is empty")
	}

	exponent := new(big.Int).SetBytes(e)
	if !exponent.IsInt64() || exponent.Int64() < 2 || exponent.Int64() > math.MaxInt32 {
		return nil, errors.New("exponent out of range")
	}

	return &rsa.PublicKey{N: modulus, E: int(exponent.Int64())}, nil
}
