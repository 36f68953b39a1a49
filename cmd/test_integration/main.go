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

func main() {
	baseURL := os.Getenv("BASKET_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Rebuilding graph...")
	payload := map[string]interface{}{
		"transactions": [][]string{
			{"milk", "bread", "eggs"},
			{"milk", "bread", "butter"},
			{"milk", "eggs", "cheese"},
			{"bread", "butter"},
			{"milk", "bread", "eggs", "butter"},
		},
	}
	if !sendRequest(baseURL, "POST", "/transactions", payload) {
		fmt.Println("FAILED: Rebuild")
		os.Exit(1)
	}
	fmt.Println("PASSED: Rebuild")

	steps := []struct {
		name     string
		endpoint string
	}{
		{"Stats", "/stats"},
		{"Bought with milk", "/items/milk/bought-with?limit=3"},
		{"Top bundles", "/bundles?n=3"},
		{"BFS from cheese", "/items/cheese/bfs?max_depth=2"},
		{"Communities", "/communities"},
	}
	for i, step := range steps {
		fmt.Printf("%d. %s...\n", i+2, step.name)
		if !sendRequest(baseURL, "GET", step.endpoint, nil) {
			fmt.Printf("FAILED: %s\n", step.name)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", step.name)
	}
}

func sendRequest(baseURL, method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return true
}
