// Rule import tool for loading baggage rules into airpass from a CSV file.
//
// Usage:
//
//	go run ./cmd/ruleimport -csv rules.csv -url http://localhost:8080 -token secret
//
// The header row names the admin rule fields (airlineCode, routeType,
// cabinClass, cabinBaggageCount, ...). Each data row is posted to
// /admin/rules; the tool exits non-zero if any row fails.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// Metrics tracks import results.
type Metrics struct {
	Created atomic.Int64
	Failed  atomic.Int64

	ProcessingTimeMs atomic.Int64
}

type createdRule struct {
	ID string `json:"id"`
}

func main() {
	csvPath := flag.String("csv", "", "Path to rule CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "airpass base URL")
	token := flag.String("token", os.Getenv("AIRPASS_ADMIN_TOKEN"), "Admin token (default $AIRPASS_ADMIN_TOKEN)")
	workers := flag.Int("workers", 4, "Number of concurrent workers")
	dryRun := flag.Bool("dry-run", false, "Parse and print payloads without sending them")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: ruleimport -csv rules.csv [-url http://localhost:8080] [-token secret]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	file, err := os.Open(*csvPath)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	rows, err := ReadRows(file)
	file.Close()
	if err != nil {
		fmt.Printf("ERROR: failed to read %s:\n%v\n", *csvPath, err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d rules from %s\n", len(rows), *csvPath)

	if *dryRun {
		enc := json.NewEncoder(os.Stdout)
		for _, row := range rows {
			if err := enc.Encode(row.Payload); err != nil {
				fmt.Printf("ERROR: line %d: %v\n", row.Line, err)
				os.Exit(1)
			}
		}
		return
	}

	target := strings.TrimRight(*baseURL, "/")
	if err := checkHealth(target); err != nil {
		fmt.Printf("ERROR: airpass not reachable at %s: %v\n", target, err)
		os.Exit(1)
	}

	start := time.Now()
	metrics := runImport(rows, target, *token, *workers)
	printResults(metrics, time.Since(start))

	if metrics.Failed.Load() > 0 {
		os.Exit(1)
	}
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func runImport(rows []Row, baseURL, token string, numWorkers int) *Metrics {
	if numWorkers < 1 {
		numWorkers = 1
	}
	metrics := &Metrics{}

	work := make(chan Row, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for row := range work {
				started := time.Now()
				id, err := createRule(client, baseURL, token, row.Payload)
				metrics.ProcessingTimeMs.Add(time.Since(started).Milliseconds())

				if err != nil {
					metrics.Failed.Add(1)
					fmt.Printf("✗ line %d: %v\n", row.Line, err)
					continue
				}
				metrics.Created.Add(1)
				fmt.Printf("✓ line %d: %s\n", row.Line, id)
			}
		}()
	}

	for _, row := range rows {
		work <- row
	}
	close(work)
	wg.Wait()

	return metrics
}

func createRule(client *http.Client, baseURL, token string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/admin/rules", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Admin-Token", token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var created createdRule
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func printResults(m *Metrics, duration time.Duration) {
	created := m.Created.Load()
	failed := m.Failed.Load()

	fmt.Println()
	fmt.Printf("Created:  %d\n", created)
	fmt.Printf("Failed:   %d\n", failed)
	fmt.Printf("Duration: %s\n", duration.Round(time.Millisecond))
	if total := created + failed; total > 0 {
		fmt.Printf("Avg:      %.1f ms/rule\n", float64(m.ProcessingTimeMs.Load())/float64(total))
	}
}
