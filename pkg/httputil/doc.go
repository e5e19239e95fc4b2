// Package httputil provides the HTTP plumbing shared by remote repositories
// and the photo fetcher.
//
// # Overview
//
//   - [Client]: GET with retry, structured errors and an optional cache
//   - [Retry]: automatic retry with exponential backoff
//
// # Client
//
// [Client] maps HTTP failures onto kinfolk error codes: 404 becomes
// NOT_FOUND, 401/403 UNAUTHORIZED, exhausted retries NETWORK_ERROR and a
// cancelled context TIMEOUT. Successful bodies can be cached in any
// [cache.Cache]:
//
//	c := httputil.NewClient(httputil.WithCache(fc, cache.NewDefaultKeyer(), "rest", cache.TTLHTTP))
//	var people []family.Person
//	err := c.GetJSON(ctx, url, header, &people)
//
// # Retry
//
// [Retry] re-runs an operation when it fails with a [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// The delay doubles after each attempt, capped at [MaxDelay]. [NewClient]
// defaults to [DefaultAttempts] attempts starting at [DefaultDelay].
//
// [cache.Cache]: github.com/matzehuels/kinfolk/pkg/cache
package httputil
