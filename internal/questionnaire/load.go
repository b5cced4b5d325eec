package questionnaire

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/questionnaire-cli/internal/fetcher"
)

// Columns names the question and answer columns of a source file.
type Columns struct {
	Question string
	Answer   string
}

// DefaultColumns matches the column names the compliance team exports.
var DefaultColumns = Columns{Question: "Question", Answer: "Answer"}

// Load reads a questionnaire file (.csv or .xlsx, by extension) into a Store.
// Missing files, unsupported extensions, and missing columns are fatal and
// reported with the offending path or column name.
func Load(path string, role Role, cols Columns) (*Store, error) {
	var (
		table *fetcher.Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		table, err = fetcher.ReadCSVFile(path, fetcher.CSVOptions{})
	case ".xlsx":
		table, err = fetcher.ReadXLSXFile(path, fetcher.XLSXOptions{})
	default:
		return nil, eris.Errorf("questionnaire: unsupported file type %s (only .csv and .xlsx)", path)
	}
	if err != nil {
		return nil, err
	}

	questionIdx, err := table.ColumnIndex(cols.Question)
	if err != nil {
		return nil, eris.Wrapf(err, "questionnaire: %s", path)
	}
	answerIdx, err := table.ColumnIndex(cols.Answer)
	if err != nil {
		return nil, eris.Wrapf(err, "questionnaire: %s", path)
	}

	store := NewStore(role)
	for i := range table.Rows {
		question := table.Cell(i, questionIdx)
		if Normalize(question) == "" {
			continue
		}
		store.Add(question, table.Cell(i, answerIdx), i)
	}

	zap.L().Info("questionnaire: loaded",
		zap.String("path", path),
		zap.String("role", string(role)),
		zap.Int("rows", len(table.Rows)),
		zap.Int("questions", store.Len()),
	)

	return store, nil
}
