package utils

import (
	"crypto/rand"
	"log"
	"math/big"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	TicketCodeLength   = 12
	TransferCodeLength = 10
)

// codeInsertAttempts bounds the generate-until-unique retry loop; with 36
// symbols a collision on even one attempt is already vanishingly unlikely.
const codeInsertAttempts = 5

// GenerateCode returns a code of the given length drawn uniformly from
// [A-Z0-9]. Ticket and transfer codes share this generator; the store's
// unique indexes plus the callers' retry loops handle collisions.
func GenerateCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			log.Printf("Error reading random source: %s\n", err.Error())
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
