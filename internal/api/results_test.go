package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeList(t *testing.T) {
	t.Run("Bare array", func(t *testing.T) {
		items, err := DecodeList(json.RawMessage(`[{"id":1},{"id":2}]`))
		assert.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("Paginated results", func(t *testing.T) {
		items, err := DecodeList(json.RawMessage(`{"count":2,"results":[{"id":1},{"id":2}]}`))
		assert.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("Legacy value key", func(t *testing.T) {
		items, err := DecodeList(json.RawMessage(`{"value":[{"id":1}]}`))
		assert.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("Object without list keys", func(t *testing.T) {
		items, err := DecodeList(json.RawMessage(`{"detail":"ok"}`))
		assert.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("Null and empty", func(t *testing.T) {
		items, err := DecodeList(nil)
		assert.NoError(t, err)
		assert.Nil(t, items)

		items, err = DecodeList(json.RawMessage(`null`))
		assert.NoError(t, err)
		assert.Nil(t, items)
	})

	t.Run("Malformed payload", func(t *testing.T) {
		_, err := DecodeList(json.RawMessage(`[{"id":`))
		assert.Error(t, err)
	})
}
