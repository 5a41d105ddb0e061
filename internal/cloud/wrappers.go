// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

import (
	"net/http"

	"golang.org/x/time/rate"
)

// QuotaAwareTransport is an http.RoundTripper that waits for a token from a
// rate limiter before every request, so a burst of dispatches from the
// control surface cannot flood the edit service. Waiting honours the
// request context: a cancelled request fails without being sent.
type QuotaAwareTransport struct {
	Base      http.RoundTripper
	RateLimit *rate.Limiter
}

// NewQuotaAwareTransport wraps base. A requestsPerSecond of zero or less
// disables limiting; burst is clamped to at least one.
func NewQuotaAwareTransport(base http.RoundTripper, requestsPerSecond float64, burst int) *QuotaAwareTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &QuotaAwareTransport{
		Base:      base,
		RateLimit: rate.NewLimiter(limit, burst),
	}
}

func (q *QuotaAwareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := q.RateLimit.Wait(req.Context()); err != nil {
		return nil, err
	}
	return q.Base.RoundTrip(req)
}
