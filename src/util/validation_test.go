package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.example.co",
		"a+tag@example.org",
	}
	for _, e := range valid {
		assert.True(t, ValidateEmail(e), e)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@@example.com",
		"user @example.com",
	}
	for _, e := range invalid {
		assert.False(t, ValidateEmail(e), e)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("12345678"))
	assert.True(t, ValidatePassword("a-much-longer-password"))
	assert.False(t, ValidatePassword("1234567"))
	assert.False(t, ValidatePassword(""))
}

func TestValidateDate(t *testing.T) {
	assert.True(t, ValidateDate("2026-01-31"))
	assert.False(t, ValidateDate("2026-1-31"))
	assert.False(t, ValidateDate("2026-13-01"))
	assert.False(t, ValidateDate("31-01-2026"))
	assert.False(t, ValidateDate("yesterday"))
}
