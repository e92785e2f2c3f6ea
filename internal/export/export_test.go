package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"findash/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{
			ID:             1,
			AccountID:      1,
			Type:           models.TypeDebit,
			Amount:         decimal.RequireFromString("-42.5"),
			Description:    "CARREFOUR MARKET",
			Merchant:       "Carrefour",
			Date:           time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			CategoryName:   "Courses",
			ParentCategory: "Vie quotidienne",
			SubCategory:    "Alimentation",
		},
		{
			ID:          2,
			AccountID:   1,
			Type:        models.TypeCredit,
			Amount:      decimal.RequireFromString("2000"),
			Description: "VIREMENT SALAIRE",
			Date:        time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteTransactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, sampleTransactions()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id;account_id;date;transaction_type;amount;description;merchant;category;parent_category;sub_category", lines[0])
	assert.Equal(t, "1;1;2025-03-01;debit;-42.50;CARREFOUR MARKET;Carrefour;Courses;Vie quotidienne;Alimentation", lines[1])
	assert.Equal(t, "2;1;2025-03-05;credit;2000.00;VIREMENT SALAIRE;;;;", lines[2])
}

func TestWriteTransactionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, nil))
	assert.Equal(t, "id;account_id;date;transaction_type;amount;description;merchant;category;parent_category;sub_category",
		strings.TrimSpace(buf.String()))
}

func TestWriteTransactionsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteTransactionsToFile(path, sampleTransactions(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CARREFOUR MARKET")
}
