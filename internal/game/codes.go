package game

import "math/rand"

// codeAlphabet excludes visually ambiguous characters (I, O, 0, 1).
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// GenerateCode returns a fresh room code. The 32^6 space makes
// collisions a non-concern at operating scale; the registry treats a
// generated collision the same as an explicit one.
func GenerateCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(buf)
}
