package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("  a \n\t b   c "))
	assert.Equal(t, "", CollapseSpace(" \n "))
}

func TestFmtErrorfWraps(t *testing.T) {
	base := errors.New("boom")
	err := FmtErrorf("load books", base)
	assert.EqualError(t, err, "load books: boom")
	assert.ErrorIs(t, err, base)
}
