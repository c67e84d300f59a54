package validator

import (
	"slices"
	"time"
)

// Claims holds the registered claims of a verified token. Times are Unix
// seconds and zero when the claim is absent.
type Claims struct {
	Issuer    string   `json:"iss,omitempty"`
	Subject   string   `json:"sub,omitempty"`
	Audience  []string `json:"aud,omitempty"`
	Expiry    int64    `json:"exp,omitempty"`
	NotBefore int64    `json:"nbf,omitempty"`
	IssuedAt  int64    `json:"iat,omitempty"`
	ID        string   `json:"jti,omitempty"`
}

// Policy lists the checks a token must pass besides its signature and
// time window. Empty fields are not checked.
type Policy struct {
	// MaxValidity caps the age of the token, measured from iat. When it is
	// set, a token without iat is rejected rather than let through
	// unchecked.
	MaxValidity time.Duration
	// Audiences must share at least one value with the aud claim.
	Audiences []string
	// Issuers must contain the iss claim.
	Issuers []string
	// Subject must equal the sub claim.
	Subject string
	// RequiredKeyID must equal the kid in the token header. It is set by
	// the Validator for each key it tries.
	RequiredKeyID string
}

// Clone returns a deep copy of p. A nil policy clones to an empty one.
func (p *Policy) Clone() *Policy {
	if p == nil {
		return &Policy{}
	}

	return &Policy{
		MaxValidity:   p.MaxValidity,
		Audiences:     slices.Clone(p.Audiences),
		Issuers:       slices.Clone(p.Issuers),
		Subject:       p.Subject,
		RequiredKeyID: p.RequiredKeyID,
	}
}

// WithKeyID returns a copy of p bound to kid.
func (p *Policy) WithKeyID(kid string) *Policy {
	clone := p.Clone()
	clone.RequiredKeyID = kid
	return clone
}
