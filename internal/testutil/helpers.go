package testutil

import (
	"crypto/rand"
	"fmt"
	"time"
)

// GenerateTestBucketName generates a unique bucket name for testing.
func GenerateTestBucketName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// GenerateTestKey generates a unique object key for testing.
func GenerateTestKey(prefix string) string {
	return fmt.Sprintf("%s/%d.bin", prefix, time.Now().UnixNano())
}

// GenerateRandomData generates random bytes for test payloads.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	_, _ = rand.Read(data)
	return data
}
