package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Meridian authentication service. It covers
// the unauthenticated surface (login, signup, reset, verification) that the
// flow package drives.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}
