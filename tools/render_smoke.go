// Smoke client for a running service instance: requests one PDF and
// writes it next to the working directory.
//
//	go run ./tools -url http://localhost:3000/resume/preview -token <session>
package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

func main() {
	service := flag.String("service", "http://localhost:3000", "base URL of the pdf service")
	target := flag.String("url", "", "resume preview URL to render")
	token := flag.String("token", "", "session token for the preview page")
	out := flag.String("out", "resume.pdf", "output file")
	flag.Parse()

	if *target == "" || *token == "" {
		fmt.Fprintln(os.Stderr, "usage: render_smoke -url <preview-url> -token <session> [-service <base>] [-out resume.pdf]")
		os.Exit(2)
	}

	q := url.Values{}
	q.Set("url", *target)
	q.Set("token", *token)

	// Generous client-side timeout: navigation alone is allowed 30s.
	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Get(*service + "/generate-pdf?" + q.Encode())
	if err != nil {
		fmt.Fprintf(os.Stderr, "request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read body: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "service returned %d: %s\n", resp.StatusCode, body)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, body, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *out, len(body))
}
