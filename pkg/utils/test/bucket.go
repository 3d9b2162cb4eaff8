package testutils

import (
	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/merkle"
)

// NewTestBucket creates a simple message bucket for testing
func NewTestBucket(role llm.Role, text string) merkle.Bucket {
	return merkle.Bucket{
		Type:     merkle.TypeMessage,
		Role:     role,
		Content:  text,
		Provider: "test-provider",
	}
}
