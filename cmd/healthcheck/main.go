// Command healthcheck probes the API health endpoint and exits 0 or 1. It
// exists because the server ships in a scratch image with no curl or wget for
// the container HEALTHCHECK to call.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"
)

const probeTimeout = 2 * time.Second

func main() {
	if !probe(healthURL(os.Getenv("POLARIS_LISTEN_ADDR"))) {
		os.Exit(1)
	}
}

func probe(url string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := (&http.Client{Timeout: probeTimeout}).Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// healthURL derives the probe URL from the server's listen address. The
// probe runs inside the same container, so a bind-all or empty host is
// rewritten to loopback.
func healthURL(listenAddr string) string {
	return "http://" + normalizeAddr(listenAddr) + "/api/v1/health"
}

func normalizeAddr(raw string) string {
	if raw == "" {
		return "127.0.0.1:8080"
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return "127.0.0.1:8080"
	}

	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
