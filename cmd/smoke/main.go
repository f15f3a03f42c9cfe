package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var baseURL = "http://localhost:8080"

func main() {
	if v := os.Getenv("SMOKE_BASE_URL"); v != "" {
		baseURL = v
	}

	fmt.Println("Starting smoke test against", baseURL)

	fmt.Println("1. Health...")
	if _, ok := sendRequest("GET", "/health", nil); !ok {
		fmt.Println("FAILED: health")
		os.Exit(1)
	}
	fmt.Println("PASSED: health")

	fmt.Println("2. Query builder...")
	payload := map[string]interface{}{
		"entityType": "Person",
		"main": []map[string]string{
			{"elementLabel": "lastName", "elementValue": "a", "qualifier": "contains", "boolean": "or"},
			{"elementLabel": "firstName", "elementValue": "a", "qualifier": "contains", "boolean": "and"},
		},
		"page":  1,
		"limit": 5,
	}
	body, ok := sendRequest("POST", "/api/query-builder", payload)
	if !ok {
		fmt.Println("FAILED: query builder")
		os.Exit(1)
	}
	fmt.Println("PASSED: query builder")

	var page struct {
		Data struct {
			Nodes []map[string]interface{} `json:"nodes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &page); err != nil || len(page.Data.Nodes) == 0 {
		fmt.Println("No people returned, skipping traversal")
		return
	}

	fmt.Println("3. Related nodes...")
	id := page.Data.Nodes[0]["_id"]
	if _, ok := sendRequest("GET", fmt.Sprintf("/api/graph/related?_id=%v&steps=2", id), nil); !ok {
		fmt.Println("FAILED: related nodes")
		os.Exit(1)
	}
	fmt.Println("PASSED: related nodes")
}

func sendRequest(method, endpoint string, payload interface{}) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return respBody, true
}
