package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	pwLower   = "abcdefghijkmnopqrstuvwxyz"
	pwUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	pwDigits  = "23456789"
	pwSymbols = "!@#$%&*+-="
)

// GeneratePassword returns a random password of length n (minimum 12) with at
// least one character from each class.
func GeneratePassword(n int) string {
	if n < 12 {
		n = 12
	}
	all := pwLower + pwUpper + pwDigits + pwSymbols
	buf := make([]byte, n)
	// one guaranteed pick per class, the rest from the full set
	buf[0] = pick(pwLower)
	buf[1] = pick(pwUpper)
	buf[2] = pick(pwDigits)
	buf[3] = pick(pwSymbols)
	for i := 4; i < n; i++ {
		buf[i] = pick(all)
	}
	for i := len(buf) - 1; i > 0; i-- {
		j := randInt(i + 1)
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

func pick(set string) byte {
	return set[randInt(len(set))]
}

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	return int(v.Int64())
}
