package otp

import "math/rand"

// CodeLength is the number of digits in a generated OTP.
const CodeLength = 6

// GenerateCode returns a random numeric code of the given length. Leading
// zeros are kept; codes are always compared as strings.
func GenerateCode(length int) string {
	if length <= 0 {
		return ""
	}
	const charset = "0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
