package cii_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LL7Baucarre/facture/internal/cii"
)

func newChecker(t *testing.T) *cii.Checker {
	t.Helper()

	checker, err := cii.NewChecker("")
	require.NoError(t, err)
	t.Cleanup(checker.Close)

	return checker
}

func TestChecker_Check(t *testing.T) {
	checker := newChecker(t)

	t.Run("malformed document", func(t *testing.T) {
		err := checker.Check([]byte("<rsm:CrossIndustryInvoice><unclosed>"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mal formé")
	})

	t.Run("well-formed but missing mandatory elements", func(t *testing.T) {
		err := checker.Check([]byte(`<?xml version="1.0"?><CrossIndustryInvoice><ExchangedDocument/></CrossIndustryInvoice>`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "élément manquant: ExchangedDocumentContext")
	})

	t.Run("truncated output", func(t *testing.T) {
		err := checker.Check([]byte(`<?xml version="1.0"?><CrossIndustryInvoice>`))
		require.Error(t, err)
	})
}
