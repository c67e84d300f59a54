/*
Package jwks fetches, caches and decodes the identity provider's JSON Web
Key Set.

# Overview

The package has three parts:
  - Decode turns a single JWKS record into an RS256 verification key
  - Cache keeps the raw document in a kvstore.Store with an expiry marker
  - Provider serves the document from the Cache or fetches it over HTTP

Keys are never selected by kid here. The validator package tries every
record in the set.

# Basic Usage

	store := kvstore.NewMemory()
	cache, err := jwks.NewCache(store, jwks.WithCacheTTL(5*time.Minute))
	if err != nil {
	    log.Fatal(err)
	}

	provider, err := jwks.NewProvider(jwks.WithCache(cache))
	if err != nil {
	    log.Fatal(err)
	}

	set, err := provider.Get(ctx, "https://tenant.example.com/.well-known/jwks.json")

# Cache Layout

An entry is two store keys. The payload lives under the cache name
("jwks" by default) and the expiry marker under "<name>_ttl", written as
decimal milliseconds since the Unix epoch:

	jwks      {"keys":[...]}
	jwks_ttl  1700000300000

An entry is valid while its marker is in the future. Entries are never
deleted, only overwritten by the next fetch. Any store works: kvstore
ships in-memory, Redis and Postgres implementations.

# Failure Handling

Cache problems never fail a request. A missing, expired or corrupted entry
triggers a fetch, and a failed cache write is logged. Fetch failures
(transport errors, non-2xx status, empty or undecodable body) are returned
wrapped in ErrFetchFailed. Nothing is retried.
*/
package jwks
