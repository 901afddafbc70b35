package utils

import (
	"crypto/rand"
	"fmt"
)

const shortIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const shortIDLength = 6

// ShortID returns a 6-character upper-case base36 identifier, the id
// shape used for users and chats.
func ShortID() string {
	buf := make([]byte, shortIDLength)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	for i := range buf {
		buf[i] = shortIDAlphabet[int(buf[i])%len(shortIDAlphabet)]
	}
	return string(buf)
}
