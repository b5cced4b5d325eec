package questionnaire

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questionnaire.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeTempCSV(t, "Question,Answer\nWhat is your company name?,Acme Corp\nDo you have a cat?,\n")

	s, err := Load(path, RoleReference, DefaultColumns)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	rec, ok := s.Get("What is your company name?")
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", rec.Answer)
	assert.Equal(t, 0, rec.OriginID)

	rec, ok = s.Get("Do you have a cat?")
	require.True(t, ok)
	assert.Empty(t, rec.Answer)
	assert.Equal(t, 1, rec.OriginID)
}

func TestLoad_CustomColumns(t *testing.T) {
	path := writeTempCSV(t, "Question - Full,Answer - Full,Notes\nQ1,A1,x\n")

	s, err := Load(path, RoleUnanswered, Columns{Question: "Question - Full", Answer: "Answer - Full"})
	require.NoError(t, err)

	rec, ok := s.Get("Q1")
	require.True(t, ok)
	assert.Equal(t, "A1", rec.Answer)
}

func TestLoad_MissingColumn(t *testing.T) {
	path := writeTempCSV(t, "Prompt,Response\nQ1,A1\n")

	_, err := Load(path, RoleReference, DefaultColumns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Question")
	assert.Contains(t, err.Error(), path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), RoleReference, DefaultColumns)
	assert.Error(t, err)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questionnaire.txt")
	require.NoError(t, os.WriteFile(path, []byte("Question,Answer\n"), 0o644))

	_, err := Load(path, RoleReference, DefaultColumns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questionnaire.xlsx")

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sheet1")
	require.NoError(t, err)
	header := sheet.AddRow()
	header.AddCell().SetString("Question")
	header.AddCell().SetString("Answer")
	row := sheet.AddRow()
	row.AddCell().SetString("Do you encrypt data at rest?")
	row.AddCell().SetString("Yes")
	require.NoError(t, file.Save(path))

	s, err := Load(path, RoleReference, DefaultColumns)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	rec, ok := s.Get("Do you encrypt data at rest?")
	require.True(t, ok)
	assert.Equal(t, "Yes", rec.Answer)
}

func TestLoad_SkipsBlankQuestions(t *testing.T) {
	path := writeTempCSV(t, "Question,Answer\nQ1,A1\n,orphan answer\n   ,\nQ2,A2\n")

	s, err := Load(path, RoleReference, DefaultColumns)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"Q1", "Q2"}, s.Keys())
}

func TestLoad_RaggedRows(t *testing.T) {
	path := writeTempCSV(t, "Question,Answer\nQ only row\nQ2,A2\n")

	s, err := Load(path, RoleUnanswered, DefaultColumns)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	rec, ok := s.Get("Q only row")
	require.True(t, ok)
	assert.Empty(t, rec.Answer)
}
