// Package integrations provides the HTTP fetch client shared by API clients.
//
// # Overview
//
// [Client] issues single GET requests with a fixed header set and a bounded
// per-request timeout, decoding JSON bodies on HTTP 200. Provider-specific
// clients live in subpackages:
//
//   - [github]: organization listing, languages, and root contents
//
// # Outcomes
//
// [Client.Get] distinguishes three results:
//
//   - found=true, err=nil: 200 response decoded into v
//   - found=false, err=nil: any other status that is not a rate limit
//     (404, 422, 502, ...). Logged, never retried. Callers treat it
//     as "no data" and fall back to an empty value.
//   - err != nil: retries exhausted ([ErrNetwork]), undecodable body
//     ([ErrDecode]), or the context was cancelled.
//
// Transport failures are retried with exponential
// backoff, and 403/429 responses carrying X-RateLimit-Remaining: 0 or
// Retry-After are waited out; see [httputil.Policy].
package integrations
