package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the C# extractor:
// - Extract classes, interfaces, enums, records, and methods with kinds
// - Only the explicit public modifier exports; the default is internal
// - Capture using directives as external imports
// - Record line spans for annotation attachment

func TestCSharpExtractor_Definitions(t *testing.T) {
	t.Parallel()

	e := NewCSharpExtractor()
	ext, err := e.Extract(context.Background(), "src/billing.cs", loadFixture(t, "csharp/billing.cs"))
	require.NoError(t, err)
	require.NotNil(t, ext)

	assert.Equal(t, "csharp", ext.Language)

	store := ext.Definition("IInvoiceStore")
	require.NotNil(t, store)
	assert.Equal(t, KindInterface, store.Kind)
	assert.Equal(t, Exported, store.Visibility)
	assert.Equal(t, 6, store.StartLine)
	assert.Equal(t, 9, store.EndLine)

	state := ext.Definition("InvoiceState")
	require.NotNil(t, state)
	assert.Equal(t, KindEnum, state.Kind)
	assert.Equal(t, Exported, state.Visibility)

	invoice := ext.Definition("Invoice")
	require.NotNil(t, invoice)
	assert.Equal(t, KindClass, invoice.Kind)
	assert.Equal(t, Exported, invoice.Visibility)

	service := ext.Definition("InvoiceService")
	require.NotNil(t, service)
	assert.Equal(t, KindClass, service.Kind)
	assert.Equal(t, Exported, service.Visibility)
}

func TestCSharpExtractor_Visibility(t *testing.T) {
	t.Parallel()

	// Test: public is the only exporting modifier; bare declarations are
	// internal by default.
	e := NewCSharpExtractor()
	ext, err := e.Extract(context.Background(), "src/billing.cs", loadFixture(t, "csharp/billing.cs"))
	require.NoError(t, err)

	create := ext.Definition("Create")
	require.NotNil(t, create)
	assert.Equal(t, KindFunction, create.Kind)
	assert.Equal(t, Exported, create.Visibility)
	assert.Contains(t, create.Signature, "(string id, decimal total)")

	audit := ext.Definition("Audit")
	require.NotNil(t, audit)
	assert.Equal(t, Internal, audit.Visibility)

	cache := ext.Definition("LedgerCache")
	require.NotNil(t, cache)
	assert.Equal(t, Internal, cache.Visibility)
}

func TestCSharpExtractor_Usings(t *testing.T) {
	t.Parallel()

	e := NewCSharpExtractor()
	ext, err := e.Extract(context.Background(), "src/billing.cs", loadFixture(t, "csharp/billing.cs"))
	require.NoError(t, err)

	require.Len(t, ext.Imports, 2)
	assert.Equal(t, "System", ext.Imports[0].Specifier)
	assert.Equal(t, "System.Collections.Generic", ext.Imports[1].Specifier)
}
