// Package persistence provides SQLite-based storage for floor plans, their
// per-palace star triples and notes, and person profiles.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/flyingstars/internal/flyingstar"
	"github.com/talgya/flyingstars/internal/minggua"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS floor_plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		period INTEGER NOT NULL,
		facing_degrees REAL NOT NULL,
		mountain_override TEXT NOT NULL DEFAULT '',
		replacement INTEGER NOT NULL,
		facing_mountain TEXT NOT NULL,
		sitting_mountain TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sector_notes (
		floor_plan_id TEXT NOT NULL REFERENCES floor_plans(id) ON DELETE CASCADE,
		trigram INTEGER NOT NULL,
		base_star INTEGER NOT NULL,
		mountain_star INTEGER NOT NULL,
		water_star INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (floor_plan_id, trigram)
	);

	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		birth_date TEXT NOT NULL,
		gender TEXT NOT NULL,
		gua INTEGER NOT NULL,
		gua_group TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_floor_plans_created ON floor_plans(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %q: %w", key, ErrNotFound)
	}
	return value, err
}

// MetaLastStarted is the meta key holding the server's last start time (RFC 3339).
const MetaLastStarted = "last_started"

// RecordStart stores now as the last start time and returns the previous
// one, or "" on first start.
func (db *DB) RecordStart(now time.Time) (string, error) {
	prev, err := db.GetMeta(MetaLastStarted)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("read last start: %w", err)
	}
	if err := db.SaveMeta(MetaLastStarted, now.UTC().Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("record start: %w", err)
	}
	return prev, nil
}

// SectorNote is the persisted star triple and free-text note of one palace.
type SectorNote struct {
	Trigram  int    `db:"trigram" json:"trigram"`
	Base     int    `db:"base_star" json:"base"`
	Mountain int    `db:"mountain_star" json:"mountain"`
	Water    int    `db:"water_star" json:"water"`
	Note     string `db:"note" json:"note"`
}

// FloorPlan is a stored chart request together with its palaces.
type FloorPlan struct {
	ID               uuid.UUID    `db:"id" json:"id"`
	Name             string       `db:"name" json:"name"`
	Period           int          `db:"period" json:"period"`
	FacingDegrees    float64      `db:"facing_degrees" json:"facing_degrees"`
	MountainOverride string       `db:"mountain_override" json:"mountain_override,omitempty"`
	Replacement      bool         `db:"replacement" json:"replacement"`
	FacingMountain   string       `db:"facing_mountain" json:"facing_mountain"`
	SittingMountain  string       `db:"sitting_mountain" json:"sitting_mountain"`
	CreatedAt        int64        `db:"created_at" json:"created_at"`
	Sectors          []SectorNote `db:"-" json:"sectors,omitempty"`
}

// Request returns the chart inputs the plan was saved with.
func (fp *FloorPlan) Request() flyingstar.Request {
	return flyingstar.Request{
		Period:           fp.Period,
		FacingDegrees:    fp.FacingDegrees,
		MountainOverride: fp.MountainOverride,
		ForceReplacement: fp.Replacement,
	}
}

// NewFloorPlan computes the chart for req and returns an unsaved plan
// holding one sector row per palace.
func NewFloorPlan(name string, req flyingstar.Request) (*FloorPlan, *flyingstar.Chart, error) {
	chart, err := flyingstar.CalculateChecked(req)
	if err != nil {
		return nil, nil, err
	}
	fp := &FloorPlan{
		ID:               uuid.New(),
		Name:             name,
		Period:           req.Period,
		FacingDegrees:    req.FacingDegrees,
		MountainOverride: req.MountainOverride,
		Replacement:      req.ForceReplacement,
		CreatedAt:        time.Now().Unix(),
	}
	fp.applyChart(chart)
	return fp, chart, nil
}

// applyChart refreshes the plan's mountains and star triples, keeping any
// notes already attached to a palace.
func (fp *FloorPlan) applyChart(chart *flyingstar.Chart) {
	notes := make(map[int]string, len(fp.Sectors))
	for _, s := range fp.Sectors {
		notes[s.Trigram] = s.Note
	}

	fp.FacingMountain = chart.FacingMountain()
	fp.SittingMountain = chart.SittingMountain()
	fp.Sectors = fp.Sectors[:0]
	for _, p := range chart.Palaces() {
		fp.Sectors = append(fp.Sectors, SectorNote{
			Trigram:  p.Trigram,
			Base:     p.Base,
			Mountain: p.Mountain,
			Water:    p.Water,
			Note:     notes[p.Trigram],
		})
	}
}

// SaveFloorPlan writes a plan and fully replaces its sector rows.
func (db *DB) SaveFloorPlan(fp *FloorPlan) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT OR REPLACE INTO floor_plans
		(id, name, period, facing_degrees, mountain_override, replacement,
		 facing_mountain, sitting_mountain, created_at)
		VALUES (:id, :name, :period, :facing_degrees, :mountain_override, :replacement,
		 :facing_mountain, :sitting_mountain, :created_at)`, fp)
	if err != nil {
		return fmt.Errorf("insert floor plan %s: %w", fp.ID, err)
	}

	if _, err := tx.Exec("DELETE FROM sector_notes WHERE floor_plan_id = ?", fp.ID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO sector_notes
		(floor_plan_id, trigram, base_star, mountain_star, water_star, note)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range fp.Sectors {
		if _, err := stmt.Exec(fp.ID, s.Trigram, s.Base, s.Mountain, s.Water, s.Note); err != nil {
			return fmt.Errorf("insert sector %d of %s: %w", s.Trigram, fp.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("floor plan saved", "id", fp.ID, "name", fp.Name, "facing", fp.FacingMountain)
	return nil
}

// LoadFloorPlan reads a plan and its sectors.
func (db *DB) LoadFloorPlan(id uuid.UUID) (*FloorPlan, error) {
	var fp FloorPlan
	err := db.conn.Get(&fp, "SELECT * FROM floor_plans WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("floor plan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load floor plan %s: %w", id, err)
	}

	err = db.conn.Select(&fp.Sectors,
		`SELECT trigram, base_star, mountain_star, water_star, note
		 FROM sector_notes WHERE floor_plan_id = ? ORDER BY trigram`, id)
	if err != nil {
		return nil, fmt.Errorf("load sectors of %s: %w", id, err)
	}
	return &fp, nil
}

// ListFloorPlans returns all plans, newest first, without their sectors.
func (db *DB) ListFloorPlans() ([]FloorPlan, error) {
	var plans []FloorPlan
	err := db.conn.Select(&plans, "SELECT * FROM floor_plans ORDER BY created_at DESC, name")
	return plans, err
}

// RecalculateFloorPlan recomputes a stored plan's chart with new inputs,
// keeping its palace notes.
func (db *DB) RecalculateFloorPlan(id uuid.UUID, req flyingstar.Request) (*FloorPlan, error) {
	fp, err := db.LoadFloorPlan(id)
	if err != nil {
		return nil, err
	}
	chart, err := flyingstar.CalculateChecked(req)
	if err != nil {
		return nil, err
	}
	fp.Period = req.Period
	fp.FacingDegrees = req.FacingDegrees
	fp.MountainOverride = req.MountainOverride
	fp.Replacement = req.ForceReplacement
	fp.applyChart(chart)

	if err := db.SaveFloorPlan(fp); err != nil {
		return nil, err
	}
	return fp, nil
}

// UpdateSectorNote replaces the note of one palace of a plan.
func (db *DB) UpdateSectorNote(id uuid.UUID, trigram int, note string) error {
	res, err := db.conn.Exec(
		"UPDATE sector_notes SET note = ? WHERE floor_plan_id = ? AND trigram = ?",
		note, id, trigram,
	)
	if err != nil {
		return fmt.Errorf("update note %s/%d: %w", id, trigram, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("sector %d of %s: %w", trigram, id, ErrNotFound)
	}
	return nil
}

// DeleteFloorPlan removes a plan and its sectors.
func (db *DB) DeleteFloorPlan(id uuid.UUID) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sector_notes WHERE floor_plan_id = ?", id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM floor_plans WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("floor plan %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// Person is a client profile with its cached Life Gua.
type Person struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	BirthDate string         `db:"birth_date" json:"birth_date"` // YYYY-MM-DD
	Gender    minggua.Gender `db:"gender" json:"gender"`
	Gua       int            `db:"gua" json:"gua"`
	GuaGroup  minggua.Group  `db:"gua_group" json:"gua_group"`
}

// Birth parses the stored birth date.
func (p *Person) Birth() (time.Time, error) {
	return time.Parse(time.DateOnly, p.BirthDate)
}

// SavePerson recomputes the person's Gua and group from birth date and
// gender, then upserts the record. A zero ID is assigned a new one.
func (db *DB) SavePerson(p *Person) error {
	birth, err := p.Birth()
	if err != nil {
		return fmt.Errorf("person %q birth date: %w", p.Name, err)
	}
	gua, err := minggua.LifeGuaForDate(birth, p.Gender)
	if err != nil {
		return fmt.Errorf("person %q: %w", p.Name, err)
	}
	p.Gua = gua
	p.GuaGroup = minggua.GroupOf(gua)
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err = db.conn.NamedExec(`INSERT OR REPLACE INTO people
		(id, name, birth_date, gender, gua, gua_group)
		VALUES (:id, :name, :birth_date, :gender, :gua, :gua_group)`, p)
	if err != nil {
		return fmt.Errorf("insert person %s: %w", p.ID, err)
	}
	slog.Info("person saved", "id", p.ID, "gua", p.Gua, "group", p.GuaGroup)
	return nil
}

// LoadPerson reads one person.
func (db *DB) LoadPerson(id uuid.UUID) (*Person, error) {
	var p Person
	err := db.conn.Get(&p, "SELECT * FROM people WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("person %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load person %s: %w", id, err)
	}
	return &p, nil
}
