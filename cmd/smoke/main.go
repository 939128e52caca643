package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Walks one conversation through a running server. Set BASE_URL to point
// somewhere other than localhost:3000.
var baseURL = "http://localhost:3000/whisper"

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func step(title, method, url string, body interface{}) []byte {
	color.Yellow("\n%s", title)
	resp, respBody, err := sendRequest(method, url, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 400 {
		color.Red("Status: %s", resp.Status)
	} else {
		color.Green("Status: %s", resp.Status)
	}
	if len(respBody) > 0 {
		prettyPrint(respBody)
	}
	return respBody
}

func main() {
	if v := os.Getenv("BASE_URL"); v != "" {
		baseURL = v
	}
	chatKey := uuid.NewString()
	color.Cyan("🚀 Starting agent assist smoke test (chatkey %s)\n", chatKey)

	step("1. Version", "GET", "/version", nil)

	messages := []struct{ text, kind string }{
		{"Hi, I need help with the search API", "Customer"},
		{"Sure, which product are you using?", "Agent"},
		{"The cloud version, queries return nothing", "Customer"},
	}
	var last []byte
	for i, m := range messages {
		last = step(fmt.Sprintf("2.%d %s: %q", i+1, m.kind, m.text), "POST", "/suggestions", map[string]interface{}{
			"chatkey":      chatKey,
			"query":        m.text,
			"type":         m.kind,
			"maxDocuments": 5,
			"maxQuestions": 3,
		})
	}

	step("3. Refresh last suggestion", "GET", "/suggestions?chatkey="+chatKey+"&maxDocuments=2&maxQuestions=1", nil)

	var suggestion struct {
		Data struct {
			Documents []struct {
				Value struct {
					Id string `json:"id"`
				} `json:"value"`
			} `json:"documents"`
		} `json:"data"`
	}
	_ = json.Unmarshal(last, &suggestion)
	if len(suggestion.Data.Documents) == 0 {
		color.Red("\nNo documents suggested, skipping selection")
	} else {
		step("4. Select first document", "POST", "/suggestions/select", map[string]string{
			"chatkey": chatKey,
			"id":      suggestion.Data.Documents[0].Value.Id,
		})
	}

	step("5. Add product filter", "POST", "/facets", map[string]interface{}{
		"chatkey": chatKey,
		"name":    "product",
		"values":  []string{"cloud"},
	})
	step("6. Clear answers", "DELETE", "/facets?chatkey="+chatKey, nil)

	color.Cyan("\n✅ Done")
}
