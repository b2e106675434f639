package utils

import (
	"math/rand"
	"time"
)

const slugCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const groupCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789" // no ambiguous chars

var seededRand *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

// GenerateSlug generates a random slug of fixed length
func GenerateSlug(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = slugCharset[seededRand.Intn(len(slugCharset))]
	}
	return string(b)
}

// GenerateGroupCode generates the 4-character short code attached to a group
func GenerateGroupCode() string {
	b := make([]byte, 4)
	for i := range b {
		b[i] = groupCharset[seededRand.Intn(len(groupCharset))]
	}
	return string(b)
}
