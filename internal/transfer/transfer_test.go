package transfer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monedero-app/monedero/internal/model"
)

func sample() []model.Transaction {
	created := time.Date(2025, 6, 1, 12, 0, 0, 123_000_000, time.UTC)
	return []model.Transaction{
		{
			ID:          "1748779200000",
			Type:        model.TxIncome,
			Amount:      decimal.RequireFromString("1200"),
			Description: "Sueldo",
			Category:    model.CategoryOther,
			Date:        time.Date(2025, 5, 27, 8, 30, 0, 0, time.UTC),
			CreatedAt:   created,
		},
		{
			ID:          "1748779200001",
			Type:        model.TxExpense,
			Amount:      decimal.RequireFromString("12.50"),
			Description: "Almuerzo, con \"postre\"",
			Category:    model.CategoryFood,
			Date:        created,
			CreatedAt:   created,
		},
	}
}

func assertSameList(t *testing.T, want, got []model.Transaction) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Type, got[i].Type)
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "amount %d", i)
		assert.Equal(t, want[i].Description, got[i].Description)
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.True(t, want[i].Date.Equal(got[i].Date), "date %d", i)
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt), "created %d", i)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"csv", "json"}, r.Formats())
	assert.NotNil(t, r.Get("CSV"))
	assert.NotNil(t, r.Get(" json "))
	assert.Nil(t, r.Get("xlsx"))
	assert.Panics(t, func() { r.Register(CSV{}) })
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "csv", FormatFromPath("/tmp/export.CSV"))
	assert.Equal(t, "json", FormatFromPath("backup.json"))
	assert.Equal(t, "", FormatFromPath("noext"))
}

func TestCodecs_RoundTrip(t *testing.T) {
	for _, format := range DefaultRegistry().Formats() {
		t.Run(format, func(t *testing.T) {
			codec := DefaultRegistry().Get(format)
			var buf bytes.Buffer
			require.NoError(t, codec.Encode(&buf, sample()))

			got, err := codec.Decode(&buf)
			require.NoError(t, err)
			assertSameList(t, sample(), got)
		})
	}
}

func TestCSV_Encode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV{}.Encode(&buf, sample()[:1]))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, "1748779200000,income,1200,Sueldo,Otros,2025-05-27T08:30:00Z,2025-06-01T12:00:00.123Z", lines[1])
}

func TestCSV_DecodeLenient(t *testing.T) {
	input := Header + "\n" +
		",Gasto,7.25,Bus,transport,2025-05-20,\n" +
		"9,in,100,Beca,Educacion,2025-05-21T10:00:00-06:00,\n"

	txs, err := CSV{}.Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Empty(t, txs[0].ID)
	assert.Equal(t, model.TxExpense, txs[0].Type)
	assert.Equal(t, model.CategoryTransport, txs[0].Category)
	assert.True(t, txs[0].Date.Equal(time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)))
	assert.True(t, txs[0].CreatedAt.IsZero())

	assert.Equal(t, model.TxIncome, txs[1].Type)
	assert.Equal(t, model.CategoryEducation, txs[1].Category)
	assert.True(t, txs[1].Date.Equal(time.Date(2025, 5, 21, 16, 0, 0, 0, time.UTC)))
}

func TestCSV_DecodeKeepsUnknownValues(t *testing.T) {
	input := Header + "\n1,transfer,5,x,Mascotas,2025-05-20,\n"
	txs, err := CSV{}.Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, model.TxType("transfer"), txs[0].Type)
	assert.Equal(t, model.Category("Mascotas"), txs[0].Category)
	assert.Error(t, txs[0].Validate())
}

func TestCSV_DecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		row   string
		match string
	}{
		{name: "bad amount", row: "1,income,abc,x,Otros,2025-05-20,", match: "amount"},
		{name: "bad date", row: "1,income,5,x,Otros,20/05/2025,", match: "date"},
		{name: "bad created_at", row: "1,income,5,x,Otros,2025-05-20,soon", match: "created_at"},
		{name: "short row", row: "1,income,5", match: "wrong number of fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CSV{}.Decode(strings.NewReader(Header + "\n" + tt.row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.match)
		})
	}
}

func TestCSV_DecodeRequiresHeader(t *testing.T) {
	headerless := "1,income,5,Sueldo,Otros,2025-05-20,\n" +
		"2,expense,3,Bus,Transporte,2025-05-21,\n"

	txs, err := CSV{}.Decode(strings.NewReader(headerless))
	require.ErrorIs(t, err, ErrHeader)
	assert.Nil(t, txs)

	upper := "\ufeffID,Type,Amount,Description,Category,Date,Created_At\n" +
		"1,income,5,Sueldo,Otros,2025-05-20,\n"
	txs, err = CSV{}.Decode(strings.NewReader(upper))
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestJSON_EncodeEmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON{}.Encode(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSON_DecodeStoredShape(t *testing.T) {
	input := `[{"id":"1","type":"expense","amount":3000,"description":"Supermercado","category":"Comida","date":"2025-06-01T12:00:00.000Z","createdAt":"2025-06-01T12:00:00.000Z"}]`
	txs, err := JSON{}.Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "3000", txs[0].Amount.String())
	assert.Equal(t, model.CategoryFood, txs[0].Category)
}
