package province

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	_ "modernc.org/sqlite"
)

// GeoPackage application id, "GPKG" in ASCII.
const gpkgApplicationID = 0x47504B47

func openGeoPackage(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// readGeoPackage reads one feature table. It returns the table name so a
// rewrite can keep it.
func readGeoPackage(path string, opts ReadOptions) ([]Province, CRS, string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, CRS{}, "", err
	}
	db, err := openGeoPackage(path)
	if err != nil {
		return nil, CRS{}, "", err
	}
	defer db.Close()

	q := `SELECT table_name, column_name, srs_id FROM gpkg_geometry_columns`
	args := []any{}
	if opts.Layer != "" {
		q += ` WHERE table_name = ?`
		args = append(args, opts.Layer)
	}
	q += ` ORDER BY table_name LIMIT 1`

	var table, geomCol string
	var srsID int
	if err := db.QueryRow(q, args...).Scan(&table, &geomCol, &srsID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, CRS{}, "", fmt.Errorf("gpkg: no feature table %q", opts.Layer)
		}
		return nil, CRS{}, "", fmt.Errorf("gpkg: geometry columns: %w", err)
	}

	crs, err := readSpatialRef(db, srsID)
	if err != nil {
		return nil, CRS{}, "", err
	}

	rows, err := db.Query(`SELECT * FROM ` + quoteIdent(table))
	if err != nil {
		return nil, CRS{}, "", fmt.Errorf("gpkg: %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, CRS{}, "", err
	}

	var provinces []Province
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, CRS{}, "", err
		}

		var g geom.Polygonal
		attrs := make(map[string]string, len(cols))
		for i, c := range cols {
			if c == geomCol {
				blob, ok := vals[i].([]byte)
				if !ok {
					return nil, CRS{}, "", fmt.Errorf("gpkg: row %d: geometry is %T", len(provinces), vals[i])
				}
				if g, err = decodeGeoPackageBlob(blob); err != nil {
					return nil, CRS{}, "", fmt.Errorf("gpkg: row %d: %w", len(provinces), err)
				}
				continue
			}
			attrs[c] = sqlString(vals[i])
		}
		name := attrs[opts.NameField]
		provinces = append(provinces, Province{
			Name:       name,
			Acronym:    deriveAcronym(name, attrs[opts.AbbrField]),
			Geometry:   g,
			Attributes: attrs,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, CRS{}, "", err
	}
	return provinces, crs, table, nil
}

func readSpatialRef(db *sql.DB, srsID int) (CRS, error) {
	var crs CRS
	var org sql.NullString
	var code sql.NullInt64
	err := db.QueryRow(
		`SELECT srs_name, organization, organization_coordsys_id, definition
		   FROM gpkg_spatial_ref_sys WHERE srs_id = ?`, srsID,
	).Scan(&crs.Name, &org, &code, &crs.Definition)
	if errors.Is(err, sql.ErrNoRows) {
		return CRS{Code: srsID}, nil
	}
	if err != nil {
		return CRS{}, fmt.Errorf("gpkg: spatial ref %d: %w", srsID, err)
	}
	if !strings.EqualFold(org.String, "none") {
		crs.Authority = org.String
		crs.Code = int(code.Int64)
	}
	return crs, nil
}

func sqlString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// decodeGeoPackageBlob strips the "GP" header and envelope and decodes the
// WKB payload.
func decodeGeoPackageBlob(b []byte) (geom.Polygonal, error) {
	if len(b) < 8 || b[0] != 'G' || b[1] != 'P' {
		return nil, errors.New("not a GeoPackage geometry blob")
	}
	flags := b[3]
	if flags&0x10 != 0 {
		return nil, errors.New("empty geometry")
	}
	var envelope int
	switch (flags >> 1) & 0x07 {
	case 0:
	case 1:
		envelope = 32
	case 2, 3:
		envelope = 48
	case 4:
		envelope = 64
	default:
		return nil, fmt.Errorf("bad envelope indicator %d", (flags>>1)&0x07)
	}
	start := 8 + envelope
	if len(b) < start {
		return nil, errShortWKB
	}
	return decodeWKB(b[start:])
}

func encodeGeoPackageBlob(g geom.Polygonal, srsID int32) ([]byte, error) {
	body, err := encodeWKB(g)
	if err != nil {
		return nil, err
	}
	b := g.Bounds()
	hdr := make([]byte, 8, 8+32)
	hdr[0], hdr[1] = 'G', 'P'
	hdr[2] = 0
	hdr[3] = 0x01 | 0x01<<1 // little endian, xy envelope
	binary.LittleEndian.PutUint32(hdr[4:], uint32(srsID))
	for _, v := range []float64{b.Min.X, b.Max.X, b.Min.Y, b.Max.Y} {
		hdr = binary.LittleEndian.AppendUint64(hdr, math.Float64bits(v))
	}
	return append(hdr, body...), nil
}

var gpkgSchema = []string{
	`PRAGMA application_id = ` + strconv.Itoa(gpkgApplicationID),
	`PRAGMA user_version = 10200`,
	`CREATE TABLE gpkg_spatial_ref_sys (
		srs_name TEXT NOT NULL,
		srs_id INTEGER PRIMARY KEY,
		organization TEXT NOT NULL,
		organization_coordsys_id INTEGER NOT NULL,
		definition TEXT NOT NULL,
		description TEXT)`,
	`CREATE TABLE gpkg_contents (
		table_name TEXT NOT NULL PRIMARY KEY,
		data_type TEXT NOT NULL,
		identifier TEXT UNIQUE,
		description TEXT DEFAULT '',
		last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
		min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE,
		srs_id INTEGER)`,
	`CREATE TABLE gpkg_geometry_columns (
		table_name TEXT NOT NULL,
		column_name TEXT NOT NULL,
		geometry_type_name TEXT NOT NULL,
		srs_id INTEGER NOT NULL,
		z TINYINT NOT NULL,
		m TINYINT NOT NULL,
		CONSTRAINT pk_geom_cols PRIMARY KEY (table_name, column_name))`,
	`INSERT INTO gpkg_spatial_ref_sys VALUES
		('Undefined cartesian SRS', -1, 'NONE', -1, 'undefined', NULL),
		('Undefined geographic SRS', 0, 'NONE', 0, 'undefined', NULL)`,
}

// writeGeoPackage replaces path with a single-layer GeoPackage.
func writeGeoPackage(path string, d *Dataset) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	db, err := openGeoPackage(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range gpkgSchema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("gpkg: schema: %w", err)
		}
	}

	crs := d.CRS()
	srsID := int32(-1)
	if crs.Code > 0 {
		srsID = int32(crs.Code)
		org := crs.Authority
		if org == "" {
			org = "EPSG"
		}
		def := crs.Definition
		if def == "" {
			def = "undefined"
		}
		name := crs.Name
		if name == "" {
			name = crs.String()
		}
		if _, err := tx.Exec(`INSERT INTO gpkg_spatial_ref_sys VALUES (?, ?, ?, ?, ?, NULL)`,
			name, srsID, strings.ToUpper(org), crs.Code, def); err != nil {
			return fmt.Errorf("gpkg: spatial ref: %w", err)
		}
	}

	table := d.Layer()
	attrCols := attributeColumns(d)
	ddl := `CREATE TABLE ` + quoteIdent(table) + ` (fid INTEGER PRIMARY KEY AUTOINCREMENT, geom MULTIPOLYGON`
	for _, c := range attrCols {
		ddl += ", " + quoteIdent(c) + " TEXT"
	}
	ddl += ")"
	if _, err := tx.Exec(ddl); err != nil {
		return fmt.Errorf("gpkg: create %s: %w", table, err)
	}

	b := d.Bounds()
	if _, err := tx.Exec(`INSERT INTO gpkg_contents (table_name, data_type, identifier, min_x, min_y, max_x, max_y, srs_id)
		VALUES (?, 'features', ?, ?, ?, ?, ?, ?)`, table, table, b.MinX, b.MinY, b.MaxX, b.MaxY, srsID); err != nil {
		return fmt.Errorf("gpkg: contents: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO gpkg_geometry_columns VALUES (?, 'geom', 'MULTIPOLYGON', ?, 0, 0)`,
		table, srsID); err != nil {
		return fmt.Errorf("gpkg: geometry columns: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(attrCols)+1), ", ")
	ins := `INSERT INTO ` + quoteIdent(table) + ` (geom`
	for _, c := range attrCols {
		ins += ", " + quoteIdent(c)
	}
	ins += `) VALUES (` + placeholders + `)`

	stmt, err := tx.Prepare(ins)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range d.Provinces() {
		blob, err := encodeGeoPackageBlob(p.Geometry, srsID)
		if err != nil {
			return fmt.Errorf("gpkg: %s: %w", p.Name, err)
		}
		args := make([]any, 0, len(attrCols)+1)
		args = append(args, blob)
		for _, c := range attrCols {
			args = append(args, p.Attributes[c])
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("gpkg: insert: %w", err)
		}
	}
	return tx.Commit()
}

func attributeColumns(d *Dataset) []string {
	seen := map[string]bool{"fid": true, "geom": true}
	var cols []string
	for _, p := range d.Provinces() {
		for k := range p.Attributes {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}
