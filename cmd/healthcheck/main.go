// Container healthcheck for the availability server. Exits 0 when the
// local /healthz endpoint answers 200, nonzero otherwise, so it can be
// used directly as a Docker HEALTHCHECK command.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

const probeTimeout = 8 * time.Second

func main() {
	port := os.Getenv("OFERTA_PORT")
	if port == "" {
		port = "10000"
	}

	client := &http.Client{Timeout: probeTimeout}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
