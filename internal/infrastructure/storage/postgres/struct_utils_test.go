package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"milkbill/internal/core/entity"
	"milkbill/internal/core/id"
	"milkbill/internal/core/types"
)

type mockDocument struct {
	entity.Document
	DCNumber string        `db:"dc_number" json:"dcNumber"`
	QtyKg    types.Decimal `db:"qty_kg" json:"qtyKg"`
	Ignored  string        `db:"-" json:"ignored"`
}

func TestExtractDBColumns_EmbeddedDocument(t *testing.T) {
	cols := ExtractDBColumns[mockDocument]()

	expectedCols := []string{
		"id", "deletion_mark", "version",
		"created_at", "updated_at", "created_by", "updated_by",
		"number", "date", "branch_id", "comment",
		"dc_number", "qty_kg",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
}

func TestStructToMap_EmbeddedDocument(t *testing.T) {
	doc := mockDocument{
		Document: entity.NewDocument(id.New(), types.MustDate("2025-06-10")),
		DCNumber: "BRN/1/2025-26",
		QtyKg:    types.NewDecimal(types.MustMoney("1000")),
	}
	doc.Version = 5

	m := StructToMap(doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, doc.Date, m["date"])
	assert.Equal(t, "BRN/1/2025-26", m["dc_number"])
	assert.Equal(t, doc.QtyKg, m["qty_kg"])
	_, hasIgnored := m["-"]
	assert.False(t, hasIgnored)
}
