package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	alphabet string = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits   string = "0123456789"
)

// NanoString returns a random alphanumeric string of length n
func NanoString(n int) string {
	return gonanoid.MustGenerate(alphabet, n)
}

// GenerateOTP returns a numeric one-time code of length n (6 when n <= 0)
func GenerateOTP(n int) (string, error) {
	if n <= 0 {
		n = 6
	}
	return gonanoid.Generate(digits, n)
}
