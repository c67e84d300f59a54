/*
Package oidc discovers the JWKS location of an issuer.

Identity providers publish a discovery document next to the issuer URL:

	https://tenant.example.com/.well-known/openid-configuration

Only the issuer and jwks_uri members are read. A document whose issuer
differs from the requested one is rejected.

# Usage

	issuerURL, _ := url.Parse("https://tenant.example.com/")
	client := &http.Client{Timeout: 10 * time.Second}

	endpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, client, *issuerURL)
	if err != nil {
	    // network failure, non-200 status, bad JSON, missing jwks_uri
	    // or issuer mismatch
	}

	jwksURL := endpoints.JWKSURI
*/
package oidc
