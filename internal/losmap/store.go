package losmap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	_ "modernc.org/sqlite"
)

// ErrGridNotFound is returned when no grid is stored under a name.
var ErrGridNotFound = errors.New("losmap: grid not found")

// Store persists grids in a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS los_grids (
			name              TEXT PRIMARY KEY,
			n_lats            INTEGER NOT NULL,
			n_lons            INTEGER NOT NULL,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS los_axes (
			grid              TEXT NOT NULL,
			axis              TEXT NOT NULL,
			idx               INTEGER NOT NULL,
			value             DOUBLE NOT NULL,
			PRIMARY KEY (grid, axis, idx),
			FOREIGN KEY(grid) REFERENCES los_grids(name)
		);
		CREATE TABLE IF NOT EXISTS los_coefficients (
			grid              TEXT NOT NULL,
			row_idx           INTEGER NOT NULL,
			col_idx           INTEGER NOT NULL,
			east              DOUBLE NOT NULL,
			north             DOUBLE NOT NULL,
			up                DOUBLE NOT NULL,
			PRIMARY KEY (grid, row_idx, col_idx),
			FOREIGN KEY(grid) REFERENCES los_grids(name)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes g under name, replacing any grid already stored there.
func (s *Store) Save(ctx context.Context, name string, g *Grid) (err error) {
	rows, cols := g.Dims()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, q := range []string{
		`DELETE FROM los_coefficients WHERE grid = ?`,
		`DELETE FROM los_axes WHERE grid = ?`,
		`DELETE FROM los_grids WHERE name = ?`,
	} {
		if _, err = tx.ExecContext(ctx, q, name); err != nil {
			return fmt.Errorf("clear grid %q: %w", name, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO los_grids (name, n_lats, n_lons) VALUES (?, ?, ?)`, name, rows, cols); err != nil {
		return fmt.Errorf("insert grid %q: %w", name, err)
	}

	axisStmt, err := tx.PrepareContext(ctx, `INSERT INTO los_axes (grid, axis, idx, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer axisStmt.Close()
	for axis, values := range map[string][]float64{"lat": g.Lats, "lon": g.Lons} {
		for i, v := range values {
			if _, err = axisStmt.ExecContext(ctx, name, axis, i, v); err != nil {
				return fmt.Errorf("insert %s axis: %w", axis, err)
			}
		}
	}

	coefStmt, err := tx.PrepareContext(ctx, `INSERT INTO los_coefficients (grid, row_idx, col_idx, east, north, up) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer coefStmt.Close()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c := g.At(i, j)
			if _, err = coefStmt.ExecContext(ctx, name, i, j, c.East, c.North, c.Up); err != nil {
				return fmt.Errorf("insert node (%d, %d): %w", i, j, err)
			}
		}
	}
	return tx.Commit()
}

// Load reads the grid stored under name.
func (s *Store) Load(ctx context.Context, name string) (*Grid, error) {
	var rows, cols int
	err := s.db.QueryRowContext(ctx, `SELECT n_lats, n_lons FROM los_grids WHERE name = ?`, name).Scan(&rows, &cols)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrGridNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	lats := make([]float64, rows)
	lons := make([]float64, cols)
	axisRows, err := s.db.QueryContext(ctx, `SELECT axis, idx, value FROM los_axes WHERE grid = ?`, name)
	if err != nil {
		return nil, err
	}
	defer axisRows.Close()
	for axisRows.Next() {
		var axis string
		var idx int
		var v float64
		if err := axisRows.Scan(&axis, &idx, &v); err != nil {
			return nil, err
		}
		switch {
		case axis == "lat" && idx < rows:
			lats[idx] = v
		case axis == "lon" && idx < cols:
			lons[idx] = v
		default:
			return nil, fmt.Errorf("%w: stray %s index %d", ErrGridShape, axis, idx)
		}
	}
	if err := axisRows.Err(); err != nil {
		return nil, err
	}

	east := mat.NewDense(rows, cols, nil)
	north := mat.NewDense(rows, cols, nil)
	up := mat.NewDense(rows, cols, nil)
	coefRows, err := s.db.QueryContext(ctx, `SELECT row_idx, col_idx, east, north, up FROM los_coefficients WHERE grid = ?`, name)
	if err != nil {
		return nil, err
	}
	defer coefRows.Close()
	n := 0
	for coefRows.Next() {
		var i, j int
		var e, no, u float64
		if err := coefRows.Scan(&i, &j, &e, &no, &u); err != nil {
			return nil, err
		}
		if i >= rows || j >= cols {
			return nil, fmt.Errorf("%w: node (%d, %d) outside %dx%d", ErrGridShape, i, j, rows, cols)
		}
		east.Set(i, j, e)
		north.Set(i, j, no)
		up.Set(i, j, u)
		n++
	}
	if err := coefRows.Err(); err != nil {
		return nil, err
	}
	if n != rows*cols {
		return nil, fmt.Errorf("%w: %d of %d nodes stored", ErrGridShape, n, rows*cols)
	}
	return NewGrid(lats, lons, east, north, up)
}

// List returns the names of all stored grids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM los_grids ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
