package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletion_Scan(t *testing.T) {
	var d Deletion

	require.NoError(t, d.Scan(nil))
	assert.False(t, d.IsDeleted())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, d.Scan(at))
	assert.True(t, d.IsDeleted())
	assert.Equal(t, at, d.At)

	assert.Error(t, d.Scan("2024-05-01"))
}

func TestDeletion_JSON(t *testing.T) {
	data, err := json.Marshal(Deletion{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err = json.Marshal(DeletedAt(at))
	require.NoError(t, err)

	var back Deletion
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.IsDeleted())
	assert.True(t, back.At.Equal(at))

	require.NoError(t, json.Unmarshal([]byte("null"), &back))
	assert.False(t, back.IsDeleted())
}

func TestDeletion_Value(t *testing.T) {
	v, err := Deletion{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	at := time.Now()
	v, err = DeletedAt(at).Value()
	require.NoError(t, err)
	assert.Equal(t, at, v)
}
