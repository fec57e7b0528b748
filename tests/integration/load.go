package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

const (
	baseURL        = "http://localhost:8080"
	numAccounts    = 50         // Number of accounts to register
	numTransfers   = 5000       // Total number of transfers
	maxConcurrency = 100        // Maximum number of concurrent requests
	maxAmount      = 50.0       // Maximum transfer amount
	successColor   = "\033[32m" // Green
	errorColor     = "\033[31m" // Red
	infoColor      = "\033[34m" // Blue
	resetColor     = "\033[0m"  // Reset color
)

type account struct {
	ID      string  `json:"id"`
	Balance float64 `json:"balance"`
	Status  string  `json:"status"`
}

type session struct {
	Token   string  `json:"token"`
	Account account `json:"account"`
}

type transaction struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	TotalFee float64 `json:"total_fee"`
	Status   string  `json:"status"`
}

func main() {
	fmt.Printf("%sstarting a load test with %d accounts and %d transfers%s\n",
		infoColor, numAccounts, numTransfers, resetColor)

	// Register accounts
	sessions := registerAccounts(numAccounts)
	fmt.Printf("%sregistered %d accounts%s\n", successColor, len(sessions), resetColor)
	if len(sessions) < 2 {
		fmt.Printf("%snot enough accounts to transfer between%s\n", errorColor, resetColor)
		return
	}

	// Create semaphore for limiting concurrency
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	// Track performance
	startTime := time.Now()
	successCount := 0
	errorCount := 0
	var mu sync.Mutex

	fmt.Printf("%slaunching %d transfers with max concurrency of %d%s\n",
		infoColor, numTransfers, maxConcurrency, resetColor)

	for i := 0; i < numTransfers; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire semaphore

		go func(n int) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore

			// Random sender/receiver pair
			sender := sessions[rand.Intn(len(sessions))]
			receiver := sessions[rand.Intn(len(sessions))]
			for receiver.Account.ID == sender.Account.ID {
				receiver = sessions[rand.Intn(len(sessions))]
			}

			// Random amount between 1 and maxAmount, rounded to 2 decimals
			amount := 1.0 + rand.Float64()*(maxAmount-1.0)
			amount = float64(int(amount*100)) / 100

			txID, err := createTransfer(sender.Token, receiver.Account.ID, amount)

			mu.Lock()
			if err != nil {
				errorCount++
				if n%100 == 0 { // Only log some failures to avoid overwhelming output
					fmt.Printf("%stransfer failed: %v%s\n", errorColor, err, resetColor)
				}
			} else {
				successCount++
				if n%500 == 0 {
					fmt.Printf("%stransfer %d: %s -> %s %.2f (txID: %s)%s\n",
						successColor, n, sender.Account.ID, receiver.Account.ID, amount, txID, resetColor)
				}
			}
			mu.Unlock()
		}(i)
	}

	// Wait for all transfers to complete
	wg.Wait()
	duration := time.Since(startTime)

	fmt.Printf("\n%s=== load test results ===%s\n", infoColor, resetColor)
	fmt.Printf("Total number of transfers: %d\n", numTransfers)
	fmt.Printf("Successful: %s%d (%.1f%%)%s\n",
		successColor, successCount, float64(successCount)/float64(numTransfers)*100, resetColor)
	fmt.Printf("Failed: %s%d (%.1f%%)%s\n",
		errorColor, errorCount, float64(errorCount)/float64(numTransfers)*100, resetColor)
	fmt.Printf("Duration: %.2f seconds\n", duration.Seconds())
	fmt.Printf("Throughput: %.2f transfers/second\n", float64(numTransfers)/duration.Seconds())

	// Check final balances
	fmt.Printf("\n%schecking final account states...%s\n", infoColor, resetColor)
	checkAccounts(sessions)
}

// registerAccounts registers the specified number of accounts
func registerAccounts(count int) []session {
	sessions := make([]session, 0, count)

	for i := 0; i < count; i++ {
		reqBody := map[string]string{
			"id":       fmt.Sprintf("NODE-%d-%d", time.Now().Unix(), i),
			"username": fmt.Sprintf("loaduser%d", i),
			"password": "load-test-pass",
		}
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			fmt.Printf("%sfailed to marshal JSON: %v%s\n", errorColor, err, resetColor)
			continue
		}

		resp, err := http.Post(baseURL+"/register", "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			fmt.Printf("%sfailed to register account: %v%s\n", errorColor, err, resetColor)
			continue
		}

		if resp.StatusCode != http.StatusCreated {
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("%sfailed to register account, status: %d, body: %s%s\n",
				errorColor, resp.StatusCode, string(body), resetColor)
			resp.Body.Close()
			continue
		}

		var s session
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			fmt.Printf("%sfailed to decode response: %v%s\n", errorColor, err, resetColor)
			resp.Body.Close()
			continue
		}
		resp.Body.Close()

		sessions = append(sessions, s)
		if i%10 == 0 || i == count-1 {
			fmt.Printf("%sregistered account %d/%d: %s with balance %.2f%s\n",
				successColor, i+1, count, s.Account.ID, s.Account.Balance, resetColor)
		}
	}

	return sessions
}

// createTransfer moves amount to the receiver using the sender's session
func createTransfer(token, receiverID string, amount float64) (string, error) {
	reqBody := map[string]interface{}{
		"receiver_id": receiverID,
		"amount":      amount,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %v", err)
	}

	req, err := http.NewRequest("POST", baseURL+"/transfers", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create transfer: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to create transfer, status: %d, body: %s", resp.StatusCode, string(body))
	}

	var tx transaction
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}
	return tx.ID, nil
}

// getAccount retrieves the session account state
func getAccount(token string) (*account, error) {
	req, err := http.NewRequest("GET", baseURL+"/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get account, status: %d, body: %s", resp.StatusCode, string(body))
	}

	var acc account
	if err := json.NewDecoder(resp.Body).Decode(&acc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return &acc, nil
}

// checkAccounts samples final account states
func checkAccounts(sessions []session) {
	sampleSize := minInt(10, len(sessions))

	for i := 0; i < sampleSize; i++ {
		s := sessions[rand.Intn(len(sessions))]

		acc, err := getAccount(s.Token)
		if err != nil {
			fmt.Printf("%serror retrieving account %s: %v%s\n",
				errorColor, s.Account.ID, err, resetColor)
			continue
		}

		fmt.Printf("%saccount %d: %s%s\n", infoColor, i+1, acc.ID, resetColor)
		fmt.Printf("  Original balance: %.2f, Current balance: %.2f, Status: %s\n",
			s.Account.Balance, acc.Balance, acc.Status)
	}
}

// minInt returns the minimum of two integers
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
