package requestid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWithRequestIDAndFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "test-id-123")
	assert.Equal(t, "test-id-123", FromContext(ctx))
}

func TestFromContextMissing(t *testing.T) {
	assert.Equal(t, "", FromContext(context.Background()))
}

func TestFromContextWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), Key, 12345)
	assert.Equal(t, "", FromContext(ctx))
}

func TestNewGeneratesValidUUID(t *testing.T) {
	id := New()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestNewGeneratesUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		seen[New()] = true
	}
	assert.Equal(t, 10, len(seen))
}
