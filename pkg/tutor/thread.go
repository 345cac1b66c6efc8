package tutor

import (
	"strings"

	"github.com/google/uuid"
)

// ThreadPrefix starts every thread id.
const ThreadPrefix = "user:"

// ThreadID returns the thread of a user: ThreadPrefix followed by the raw
// user id. The same user always maps to the same thread.
func ThreadID(userID string) string {
	return ThreadPrefix + userID
}

// NewThreadID returns a fresh thread for a user who wants to start over.
// The previous thread is left in the store untouched.
func NewThreadID(userID string) string {
	return ThreadID(userID) + ":" + uuid.NewString()
}

// UserOf extracts the user id from a thread id created by ThreadID or
// NewThreadID. It reports false when there is no user id.
func UserOf(threadID string) (string, bool) {
	rest, ok := strings.CutPrefix(threadID, ThreadPrefix)
	if !ok || rest == "" {
		return "", false
	}
	// A fresh thread appends ":" and a 36 character uuid.
	if i := len(rest) - 37; i >= 0 && rest[i] == ':' {
		if _, err := uuid.Parse(rest[i+1:]); err == nil {
			return rest[:i], i > 0
		}
	}
	return rest, true
}
