/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserAgentRoundTripper_RoundTrip(t *testing.T) {
	const userAgentHeader = "User-Agent"

	server := newEchoServer(userAgentHeader)
	defer server.Close()

	tests := []struct {
		name             string
		reqUserAgent     string
		rtUserAgent      string
		rtUpdateStrategy UserAgentUpdateStrategy
		wantUserAgent    string
	}{
		{
			name:             "set if empty",
			rtUserAgent:      "crpt-submitter/1.0",
			rtUpdateStrategy: UserAgentUpdateStrategySetIfEmpty,
			wantUserAgent:    "crpt-submitter/1.0",
		},
		{
			name:             "set if empty, existing",
			reqUserAgent:     "erp-export/0.1",
			rtUserAgent:      "crpt-submitter/1.0",
			rtUpdateStrategy: UserAgentUpdateStrategySetIfEmpty,
			wantUserAgent:    "erp-export/0.1",
		},
		{
			name:             "append, existing",
			reqUserAgent:     "erp-export/0.1",
			rtUserAgent:      "crpt-submitter/1.0",
			rtUpdateStrategy: UserAgentUpdateStrategyAppend,
			wantUserAgent:    "erp-export/0.1 crpt-submitter/1.0",
		},
		{
			name:             "prepend, empty",
			rtUserAgent:      "crpt-submitter/1.0",
			rtUpdateStrategy: UserAgentUpdateStrategyPrepend,
			wantUserAgent:    "crpt-submitter/1.0",
		},
		{
			name:             "prepend, existing",
			reqUserAgent:     "erp-export/0.1",
			rtUserAgent:      "crpt-submitter/1.0",
			rtUpdateStrategy: UserAgentUpdateStrategyPrepend,
			wantUserAgent:    "crpt-submitter/1.0 erp-export/0.1",
		},
		{
			name:             "empty user agent of round tripper",
			reqUserAgent:     "erp-export/0.1",
			rtUpdateStrategy: UserAgentUpdateStrategyAppend,
			wantUserAgent:    "erp-export/0.1",
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, server.URL+"/", nil)
			require.NoError(t, err)
			req.Header.Set(userAgentHeader, tt.reqUserAgent)
			rt := NewUserAgentRoundTripperWithOpts(http.DefaultTransport, tt.rtUserAgent, UserAgentRoundTripperOpts{
				UpdateStrategy: tt.rtUpdateStrategy,
			})
			resp, err := (&http.Client{Transport: rt}).Do(req)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())
			require.Equal(t, tt.wantUserAgent, resp.Header.Get(respHeaderPrefix+userAgentHeader))
		})
	}
}
