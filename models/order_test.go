package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewOrderNumber(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	assert.Equal(t, "ORD-20260314092653-a1b2c3d4", NewOrderNumber(at, id))
}
