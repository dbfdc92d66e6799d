// Package sqlite provides SQLite storage for mzTab validation reports
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

const (
	// Date format for RunTable (ISO 8601)
	runDateFormat = "2006-01-02T15:04:05Z07:00"
)

// Status values stored in FileTable
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)

// FileReport is the outcome of validating one file
type FileReport struct {
	Path    string
	File    *core.File    // nil when the parse stopped early
	Errors  *mzerror.List // may be nil when Err is set
	Err     error         // I/O failure, fatal error or overflow
	Elapsed time.Duration
}

// Status classifies the report
func (r FileReport) Status() string {
	switch {
	case r.Err != nil && r.Errors == nil:
		return StatusFailed
	case r.Err != nil, r.File == nil, r.Errors != nil && !r.Errors.IsEmpty():
		return StatusInvalid
	default:
		return StatusValid
	}
}

// Writer handles writing validation reports to SQLite database files
type Writer struct {
	db        *sql.DB
	runID     string
	started   time.Time
	fileStmt  *sql.Stmt
	errorStmt *sql.Stmt
	psmStmt   *sql.Stmt
	fileID    int
	level     mzerror.Level
}

// NewWriter creates a new SQLite report writer. Each writer records one run.
func NewWriter(outputPath string, level mzerror.Level) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:      db,
		runID:   uuid.NewString(),
		started: time.Now(),
		fileID:  1,
		level:   level,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := w.nextFileID(); err != nil {
		db.Close()
		return nil, err
	}
	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// RunID returns the identifier shared by every row of this run
func (w *Writer) RunID() string {
	return w.runID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId TEXT PRIMARY KEY,
		StartDate TEXT,
		EndDate TEXT,
		Level TEXT,
		FileCount INTEGER,
		InvalidCount INTEGER
	);

	CREATE TABLE IF NOT EXISTS FileTable (
		FileId INTEGER PRIMARY KEY,
		RunId TEXT REFERENCES RunTable(RunId),
		Path TEXT,
		Status TEXT,
		Mode TEXT,
		Type TEXT,
		ErrorCount INTEGER,
		ProteinCount INTEGER,
		PeptideCount INTEGER,
		PSMCount INTEGER,
		SmallMoleculeCount INTEGER,
		Failure TEXT,
		ElapsedMs INTEGER
	);

	CREATE TABLE IF NOT EXISTS ErrorTable (
		FileId INTEGER REFERENCES FileTable(FileId),
		Line INTEGER,
		Code INTEGER,
		Name TEXT,
		Category TEXT,
		Level TEXT,
		Message TEXT
	);

	CREATE TABLE IF NOT EXISTS PSMTable (
		FileId INTEGER REFERENCES FileTable(FileId),
		PSMId TEXT,
		Sequence TEXT,
		Accession TEXT,
		Modifications TEXT,
		Charge INTEGER,
		ExpMassToCharge DOUBLE,
		CalcMassToCharge DOUBLE,
		SpectraRef TEXT,
		blobRetentionTime BLOB
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// nextFileID continues numbering after the rows of earlier runs
func (w *Writer) nextFileID() error {
	var last sql.NullInt64
	if err := w.db.QueryRow(`SELECT MAX(FileId) FROM FileTable`).Scan(&last); err != nil {
		return fmt.Errorf("failed to read file ids: %w", err)
	}
	if last.Valid {
		w.fileID = int(last.Int64) + 1
	}
	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.fileStmt, err = w.db.Prepare(`
		INSERT INTO FileTable (
			FileId, RunId, Path, Status, Mode, Type, ErrorCount,
			ProteinCount, PeptideCount, PSMCount, SmallMoleculeCount,
			Failure, ElapsedMs
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare file statement: %w", err)
	}

	w.errorStmt, err = w.db.Prepare(`
		INSERT INTO ErrorTable (FileId, Line, Code, Name, Category, Level, Message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare error statement: %w", err)
	}

	w.psmStmt, err = w.db.Prepare(`
		INSERT INTO PSMTable (
			FileId, PSMId, Sequence, Accession, Modifications, Charge,
			ExpMassToCharge, CalcMassToCharge, SpectraRef, blobRetentionTime
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare psm statement: %w", err)
	}

	return nil
}

// WriteReport writes one file report, its errors and, for valid files, its
// PSMs. All rows of a report are written in one transaction.
func (w *Writer) WriteReport(r FileReport) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := w.writeReport(tx, r); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	w.fileID++
	return nil
}

func (w *Writer) writeReport(tx *sql.Tx, r FileReport) error {
	var mode, typ any
	counts := make([]int, len(core.DataSections))
	if r.File != nil {
		mode = r.File.Metadata.Mode.String()
		typ = r.File.Metadata.Type.String()
		for i, s := range core.DataSections {
			counts[i] = len(r.File.Records(s))
		}
	}
	var failure any
	if r.Err != nil {
		failure = r.Err.Error()
	}
	errorCount := 0
	if r.Errors != nil {
		errorCount = r.Errors.Len()
	}

	_, err := tx.Stmt(w.fileStmt).Exec(
		w.fileID,                 // FileId
		w.runID,                  // RunId
		r.Path,                   // Path
		r.Status(),               // Status
		mode,                     // Mode
		typ,                      // Type
		errorCount,               // ErrorCount
		counts[0],                // ProteinCount
		counts[1],                // PeptideCount
		counts[2],                // PSMCount
		counts[3],                // SmallMoleculeCount
		failure,                  // Failure
		r.Elapsed.Milliseconds(), // ElapsedMs
	)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}

	if r.Errors != nil {
		errStmt := tx.Stmt(w.errorStmt)
		for _, e := range r.Errors.Items() {
			var line any
			if e.Line >= 0 {
				line = e.Line
			}
			_, err := errStmt.Exec(w.fileID, line, e.Type.Code, e.Type.Name,
				e.Type.Category.String(), e.Type.Level.String(), e.Message)
			if err != nil {
				return fmt.Errorf("failed to insert error: %w", err)
			}
		}
	}

	if r.Status() != StatusValid {
		return nil
	}
	psmStmt := tx.Stmt(w.psmStmt)
	for _, psm := range r.File.PSMs {
		if err := w.writePSM(psmStmt, psm); err != nil {
			return err
		}
	}
	return nil
}

// writePSM writes a single PSM row
func (w *Writer) writePSM(stmt *sql.Stmt, psm *core.PSM) error {
	var charge, exp, calc any
	if z, ok := psm.Charge(); ok {
		charge = z
	}
	if v, ok := psm.ExpMassToCharge(); ok {
		exp = v
	}
	if v, ok := psm.CalcMassToCharge(); ok {
		calc = v
	}
	var rtBlob []byte
	if rt, ok := psm.Get(core.LogicalKey{Kind: core.ColRetentionTime}).(core.DoubleList); ok {
		rtBlob = encodeFloat64s(rt)
	}

	_, err := stmt.Exec(
		w.fileID,                     // FileId
		psm.PSMID(),                  // PSMId
		psm.Sequence(),               // Sequence
		psm.Accession(),              // Accession
		psm.Modifications().String(), // Modifications
		charge,                       // Charge
		exp,                          // ExpMassToCharge
		calc,                         // CalcMassToCharge
		psm.SpectraRefs().String(),   // SpectraRef
		rtBlob,                       // blobRetentionTime
	)
	if err != nil {
		return fmt.Errorf("failed to insert psm: %w", err)
	}
	return nil
}

// encodeFloat64s encodes values as a little-endian float64 blob
func encodeFloat64s(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// decodeFloat64s is the inverse of encodeFloat64s
func decodeFloat64s(buf []byte) []float64 {
	values := make([]float64, len(buf)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return values
}

// Finalize writes the run row and closes the database
func (w *Writer) Finalize() error {
	var files, invalid int
	err := w.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN Status != ? THEN 1 ELSE 0 END), 0)
		FROM FileTable WHERE RunId = ?
	`, StatusValid, w.runID).Scan(&files, &invalid)
	if err != nil {
		return fmt.Errorf("failed to count files: %w", err)
	}

	_, err = w.db.Exec(`
		INSERT INTO RunTable (RunId, StartDate, EndDate, Level, FileCount, InvalidCount)
		VALUES (?, ?, ?, ?, ?, ?)
	`, w.runID, w.started.Format(runDateFormat), time.Now().Format(runDateFormat), w.level.String(), files, invalid)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	// Close prepared statements
	for _, stmt := range []*sql.Stmt{w.fileStmt, w.errorStmt, w.psmStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
