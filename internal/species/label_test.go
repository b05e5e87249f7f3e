package species

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/ncbisort/internal/manifest"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces", "Homo sapiens", "Homo_sapiens"},
		{"double dot collapses", "A..B", "A_B"},
		{"triple dot keeps one pair", "A...B", "A__B"},
		{"dot and space collapse", "Bacillus sp. BS1", "Bacillus_sp_BS1"},
		{"slash after collapse", "Influenza A virus (A/Hong Kong/1/68)", "Influenza_A_virus_(A_Hong_Kong_1_68)"},
		{"slash next to underscore not collapsed", "a /b", "a__b"},
		{"existing double underscore", "x__y", "x_y"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func row(fields map[string]manifest.Value) *manifest.Record {
	r := manifest.NewRecord()
	for k, v := range fields {
		r.Set(k, v)
	}
	return r
}

func TestLabel(t *testing.T) {
	got, err := Label(row(map[string]manifest.Value{
		NameField:  manifest.StringValue("Homo sapiens"),
		TaxIDField: manifest.NumberValue("9606"),
	}))
	require.NoError(t, err)
	assert.Equal(t, "Homo_sapiens.9606", got)

	got, err = Label(row(map[string]manifest.Value{
		NameField:  manifest.StringValue("Escherichia coli str. K-12"),
		TaxIDField: manifest.StringValue("83333"),
	}))
	require.NoError(t, err)
	assert.Equal(t, "Escherichia_coli_str_K-12.83333", got)
}

func TestLabel_MissingFields(t *testing.T) {
	_, err := Label(row(map[string]manifest.Value{
		TaxIDField: manifest.NumberValue("1"),
	}))
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), NameField)

	_, err = Label(row(map[string]manifest.Value{
		NameField:  manifest.StringValue("x"),
		TaxIDField: manifest.Null(),
	}))
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), TaxIDField)
}
