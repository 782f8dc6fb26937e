package telegram

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitByBytes(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitByBytes("short", 10))

	parts := splitByBytes(strings.Repeat("ab", 10), 6)
	assert.Equal(t, []string{"ababab", "ababab", "ababab", "ab"}, parts)

	parts = splitByBytes("₹₹₹", 4)
	assert.Equal(t, []string{"₹", "₹", "₹"}, parts, "runes are never split")
}

func TestTruncateByBytes(t *testing.T) {
	assert.Equal(t, "abc", truncateByBytes("abc", 5))
	assert.Equal(t, "ab", truncateByBytes("abc", 2))
	assert.Equal(t, "₹", truncateByBytes("₹₹", 5))
	assert.Equal(t, "abc", truncateByBytes("abc", 0))
}

func TestIsNotModified(t *testing.T) {
	assert.False(t, isNotModified(nil))
	assert.False(t, isNotModified(errors.New("chat not found")))
	assert.True(t, isNotModified(errors.New("Bad Request: message is not modified: specified new message content")))
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{})
	assert.EqualError(t, err, "telegram token is empty")

	_, err = New(Options{Token: "123:abc"})
	assert.EqualError(t, err, "http client is nil")
}
