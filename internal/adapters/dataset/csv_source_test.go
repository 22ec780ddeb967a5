package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mBrond/chat-medicamentos/pkg/errors"
)

const sampleCSV = "MEDICAMENTO,CID,INFORMAÇÕES ADICIONAIS,DISTRITAIS,MUNICIPAL,ESPECIAIS\n" +
	"Dipirona,R50,\"500mg, comprimido\",1,0,0\n" +
	"Metformina,E11,,1,1,0\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCSVSource_Load(t *testing.T) {
	path := writeFile(t, "medicamentos.csv", sampleCSV)
	source := NewCSVSource(path)

	ds, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "500mg, comprimido", ds.Records[0].Notes)
	assert.Equal(t, path, ds.Source)
	assert.Equal(t, path, source.Path())
}

func TestCSVSource_ReadsOnEveryLoad(t *testing.T) {
	path := writeFile(t, "medicamentos.csv", sampleCSV)
	source := NewCSVSource(path)

	first, err := source.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(sampleCSV+"Paracetamol,R50,,0,1,0\n"), 0o600))
	second, err := source.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, first.Len())
	assert.Equal(t, 3, second.Len())
	assert.NotEqual(t, first.Version, second.Version)
}

func TestCSVSource_MissingFile(t *testing.T) {
	source := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"))

	_, err := source.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsDataLoad(err))
}

func TestParseCSV_SemicolonAndBOM(t *testing.T) {
	doc := "\ufeffMedicamento;CID;Observações;Distritais\nDipirona;R50;uso adulto;1\n"

	ds, err := ParseCSV("semicolon.csv", strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "Dipirona", ds.Records[0].MedicationName)
	assert.Equal(t, "uso adulto", ds.Records[0].Notes)
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV("empty.csv", strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, apperrors.IsDataLoad(err))
}
