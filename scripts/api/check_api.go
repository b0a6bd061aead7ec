// Minimal end-to-end integration test for the FactCheckAI API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

var baseURL = getenv("API_URL", "http://localhost:8080/v1")

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	token, sessionID := createSession()
	checkBalance(token, 20)

	checkID := runCheck(token)
	getCheck(token, checkID)
	checkHistory(token, checkID)
	downloadReport(token, checkID)

	questionRequiresPlan(token, checkID)
	subscribe(token, "pro")
	buyTokens(token, 10)

	fmt.Printf("session %s: all endpoints passed\n", sessionID)
}

// ----------------------------- session

func createSession() (string, string) {
	var resp struct {
		Token   string `json:"token"`
		Session string `json:"session"`
		Tokens  int    `json:"tokens"`
	}
	doJSON("POST", "/session", nil, &resp, http.StatusCreated)
	if resp.Token == "" || resp.Session == "" {
		log.Fatal("session: empty token or id")
	}
	return resp.Token, resp.Session
}

func checkBalance(tok string, want int) {
	var resp struct {
		Tokens int    `json:"tokens"`
		Plan   string `json:"plan"`
	}
	doAuth(tok, "GET", "/session", nil, &resp, http.StatusOK)
	if resp.Tokens != want {
		log.Fatalf("session: want %d tokens got %d", want, resp.Tokens)
	}
}

func subscribe(tok, plan string) {
	var resp struct {
		Plan string `json:"plan"`
	}
	doAuth(tok, "POST", "/session/subscribe", map[string]any{"plan": plan}, &resp, http.StatusOK)
	if resp.Plan != plan {
		log.Fatalf("subscribe: want plan %s got %s", plan, resp.Plan)
	}
}

func buyTokens(tok string, pack int) {
	doAuth(tok, "POST", "/session/tokens", map[string]any{"tokens": pack}, nil, http.StatusOK)
}

// ----------------------------- checks

func runCheck(tok string) string {
	var resp struct {
		ID     string `json:"id"`
		Result struct {
			Verdict struct {
				Label      string  `json:"verdict"`
				Confidence float64 `json:"confidence"`
			} `json:"verdict"`
		} `json:"result"`
	}
	doAuth(tok, "POST", "/checks", map[string]any{
		"claim":  fmt.Sprintf("integration test claim %d", time.Now().Unix()),
		"region": "US",
	}, &resp, http.StatusCreated)
	if resp.ID == "" {
		log.Fatal("checks: empty id")
	}
	if resp.Result.Verdict.Label == "" {
		log.Fatal("checks: empty verdict")
	}
	return resp.ID
}

func getCheck(tok, id string) {
	var resp struct {
		ID string `json:"id"`
	}
	doAuth(tok, "GET", "/checks/"+id, nil, &resp, http.StatusOK)
	if resp.ID != id {
		log.Fatalf("checks: want id %s got %s", id, resp.ID)
	}
}

func checkHistory(tok, want string) {
	var resp struct {
		Checks []struct {
			ID string `json:"id"`
		} `json:"checks"`
	}
	doAuth(tok, "GET", "/history", nil, &resp, http.StatusOK)
	for _, c := range resp.Checks {
		if c.ID == want {
			return
		}
	}
	log.Fatal("history: created check not found")
}

func downloadReport(tok, id string) {
	body, headers := doRaw(tok, "/checks/"+id+"/report", http.StatusOK)
	if len(body) == 0 {
		log.Fatal("report: empty body")
	}
	if headers.Get("Content-Disposition") == "" {
		log.Fatal("report: missing Content-Disposition")
	}
}

func questionRequiresPlan(tok, id string) {
	doAuth(tok, "POST", "/checks/"+id+"/question",
		map[string]any{"question": "what is the strongest source?"},
		nil, http.StatusPaymentRequired)
}

// ----------------------------- helpers

func doAuth(token, method, path string, body, out any, want int) {
	doReq(method, path, token, body, out, want)
}

func doJSON(method, path string, body, out any, want int) {
	doReq(method, path, "", body, out, want)
}

func doReq(method, path, token string, body, out any, want int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}

func doRaw(token, path string, want int) ([]byte, http.Header) {
	req, _ := http.NewRequest("GET", baseURL+path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("GET %s: %v", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("GET %s: want %d got %d", path, want, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		log.Fatalf("GET %s read: %v", path, err)
	}
	return body, res.Header
}
