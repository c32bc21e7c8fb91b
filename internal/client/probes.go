package client

import (
	"context"
	"net"
	"net/http"
	"time"
)

// ReachabilityTimeout bounds the API probe. The auth call itself carries no
// such bound so a slow-but-successful login is not falsely aborted.
const ReachabilityTimeout = 5 * time.Second

// Connectivity reports whether the device has any internet connection,
// distinct from the API being reachable.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// DialConnectivity checks connectivity by opening a TCP connection to a
// well-known endpoint.
type DialConnectivity struct {
	Addr    string
	Timeout time.Duration
}

func NewDialConnectivity() *DialConnectivity {
	return &DialConnectivity{Addr: "1.1.1.1:443", Timeout: 3 * time.Second}
}

func (d *DialConnectivity) Online(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Reachability probes whether the API host answers within the bounded
// timeout.
type Reachability interface {
	Reachable(ctx context.Context) bool
}

type HTTPReachability struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPReachability(baseURL string) *HTTPReachability {
	return &HTTPReachability{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: ReachabilityTimeout},
	}
}

func (r *HTTPReachability) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ReachabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
