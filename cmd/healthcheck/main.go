package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

func main() {
	os.Exit(check())
}

// check exits 0 only when /api/health answers 200, i.e. the database is reachable.
func check() int {
	client := &http.Client{Timeout: 2 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL(os.Getenv("PORT")), nil)
	if err != nil {
		return 1
	}

	resp, err := client.Do(req)
	if err != nil {
		return 1
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}

	return 0
}

// healthURL targets loopback inside the container; the server binds all
// interfaces so loopback is always reachable.
func healthURL(rawPort string) string {
	port := 4000
	if p, err := strconv.Atoi(rawPort); err == nil && p > 0 && p < 65536 {
		port = p
	}
	return fmt.Sprintf("http://127.0.0.1:%d/api/health", port)
}
