/*
Package validator verifies RS256 bearer tokens against a JWKS document using
the lestrrat-go/jwx v3 library.

# Key Selection

The validator does not look a key up by kid. It tries every record of the
key set in document order and accepts the first one that verifies the
token. For each attempt the caller's Policy is copied and bound to the
record's kid, so the token header must name the same kid as the key that
signed it. Records without a kid are tried without that binding. Records
that fail to decode are skipped.

# Checks

A token passes a key when all of these hold:
  - the RS256 signature verifies
  - the header kid equals the key's kid
  - exp has not passed, nbf has been reached and iat is not in the future
  - iss is one of Policy.Issuers
  - aud shares a value with Policy.Audiences
  - sub equals Policy.Subject
  - the token is not older than Policy.MaxValidity, measured from iat

Empty policy fields are not checked.

# Basic Usage

	policy := &validator.Policy{
	    Issuers:     []string{"https://tenant.example.com/"},
	    Audiences:   []string{"api://profiles"},
	    Subject:     "user-42",
	    MaxValidity: time.Hour,
	}

	claims, err := validator.Verify(keySet, token, policy)
	if errors.Is(err, validator.ErrNoMatchingKey) {
	    // reject the request
	}

All failures return ErrNoMatchingKey. The reason is only visible in debug
logs (see WithLogger).
*/
package validator
