package service

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// randomToken returns n uppercase hex characters from a fresh UUID
func randomToken(n int) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	if n > len(token) {
		n = len(token)
	}
	return token[:n]
}

func newTransactionID() string {
	return "TX-" + randomToken(9)
}

func newLogID() string {
	return "LOG-" + randomToken(8)
}

// message and audit ids are time-based
func newMessageID() string {
	return fmt.Sprintf("MSG-%d", time.Now().UnixNano())
}

func newAuditID() string {
	return fmt.Sprintf("AUD-%d", time.Now().UnixNano())
}

func newCardID() string {
	return fmt.Sprintf("KB-%d", rand.Intn(90000000)+10000000)
}
