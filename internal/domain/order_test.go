package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "PAID", "SHIPPED", "DELIVERED", "CANCELLED"} {
		status, err := ParseOrderStatus(s)
		require.NoError(t, err)
		assert.Equal(t, OrderStatus(s), status)
	}

	for _, s := range []string{"", "pending", "REFUNDED", "CANCELED"} {
		_, err := ParseOrderStatus(s)
		assert.Error(t, err, "status %q", s)
	}
}
