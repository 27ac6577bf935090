package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"fleetcomp/internal/model"
)

// Postgres stores entities as jsonb documents with the columns needed for
// range queries pulled out. The open duty interval is closed under a
// row-level lock so per-driver serialization holds across processes.
type Postgres struct{ db *sql.DB }

// NewPostgres opens a pool against the given DSN.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Postgres{db: db}, nil
}

// MigrateDir applies every .sql file in dir in lexical order.
func (p *Postgres) MigrateDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return err
		}
		if _, err := p.db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("migrate %s: %w", f, err)
		}
	}
	return nil
}

func (p *Postgres) putDoc(ctx context.Context, table, id string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, table), id, b)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (p *Postgres) getDoc(ctx context.Context, table, id string, out any) error {
	var b []byte
	err := p.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT doc FROM %s WHERE id=$1`, table), id).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func scanDocs[T any](rows *sql.Rows) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateDevice(ctx context.Context, d model.Device) (model.Device, error) {
	if err := p.putDoc(ctx, "devices", d.ID, d); err != nil {
		return model.Device{}, err
	}
	return d, nil
}

func (p *Postgres) GetDevice(ctx context.Context, id string) (model.Device, error) {
	var d model.Device
	if err := p.getDoc(ctx, "devices", id, &d); err != nil {
		return model.Device{}, err
	}
	return d, nil
}

func (p *Postgres) ListDevices(ctx context.Context) ([]model.Device, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT doc FROM devices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanDocs[model.Device](rows)
}

func (p *Postgres) CreateDriver(ctx context.Context, d model.Driver) (model.Driver, error) {
	if err := p.putDoc(ctx, "drivers", d.ID, d); err != nil {
		return model.Driver{}, err
	}
	return d, nil
}

func (p *Postgres) GetDriver(ctx context.Context, id string) (model.Driver, error) {
	var d model.Driver
	if err := p.getDoc(ctx, "drivers", id, &d); err != nil {
		return model.Driver{}, err
	}
	return d, nil
}

func (p *Postgres) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT doc FROM drivers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanDocs[model.Driver](rows)
}

func (p *Postgres) AssignDevice(ctx context.Context, driverID, deviceID string) (model.Driver, error) {
	if _, err := p.GetDevice(ctx, deviceID); err != nil {
		return model.Driver{}, err
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Driver{}, err
	}
	defer tx.Rollback()
	var b []byte
	err = tx.QueryRowContext(ctx, `SELECT doc FROM drivers WHERE id=$1 FOR UPDATE`, driverID).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Driver{}, ErrNotFound
	}
	if err != nil {
		return model.Driver{}, err
	}
	var d model.Driver
	if err := json.Unmarshal(b, &d); err != nil {
		return model.Driver{}, err
	}
	d.DeviceID = deviceID
	nb, err := json.Marshal(d)
	if err != nil {
		return model.Driver{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE drivers SET doc=$2 WHERE id=$1`, driverID, nb); err != nil {
		return model.Driver{}, err
	}
	return d, tx.Commit()
}

func (p *Postgres) StartInterval(ctx context.Context, iv model.DutyStatusInterval) (*model.DutyStatusInterval, error) {
	if _, err := p.GetDriver(ctx, iv.DriverID); err != nil {
		return nil, err
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	closed, err := closeOpenTx(ctx, tx, iv.DriverID, iv.StartTime, iv.Location)
	if err != nil && !errors.Is(err, ErrNoOpenInterval) {
		return nil, err
	}
	b, err := json.Marshal(iv)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO duty_intervals (id, driver_id, start_time, end_time, doc) VALUES ($1, $2, $3, NULL, $4)`,
		iv.ID, iv.DriverID, iv.StartTime, b); err != nil {
		return nil, err
	}
	return closed, tx.Commit()
}

func (p *Postgres) CloseOpenInterval(ctx context.Context, driverID string, end time.Time, loc model.GeoPoint) (*model.DutyStatusInterval, error) {
	if _, err := p.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	closed, err := closeOpenTx(ctx, tx, driverID, end, loc)
	if err != nil {
		return nil, err
	}
	return closed, tx.Commit()
}

func closeOpenTx(ctx context.Context, tx *sql.Tx, driverID string, end time.Time, loc model.GeoPoint) (*model.DutyStatusInterval, error) {
	var b []byte
	err := tx.QueryRowContext(ctx,
		`SELECT doc FROM duty_intervals WHERE driver_id=$1 AND end_time IS NULL FOR UPDATE`, driverID).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoOpenInterval
	}
	if err != nil {
		return nil, err
	}
	var iv model.DutyStatusInterval
	if err := json.Unmarshal(b, &iv); err != nil {
		return nil, err
	}
	closeInterval(&iv, end, loc)
	nb, err := json.Marshal(iv)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE duty_intervals SET end_time=$2, doc=$3 WHERE id=$1`, iv.ID, end, nb); err != nil {
		return nil, err
	}
	return &iv, nil
}

func (p *Postgres) OpenInterval(ctx context.Context, driverID string) (*model.DutyStatusInterval, error) {
	if _, err := p.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	var b []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT doc FROM duty_intervals WHERE driver_id=$1 AND end_time IS NULL`, driverID).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var iv model.DutyStatusInterval
	if err := json.Unmarshal(b, &iv); err != nil {
		return nil, err
	}
	return &iv, nil
}

func (p *Postgres) ListIntervals(ctx context.Context, driverID string, start, end time.Time) ([]model.DutyStatusInterval, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT doc FROM duty_intervals
		 WHERE driver_id=$1 AND ($2::timestamptz IS NULL OR start_time >= $2)
		   AND ($3::timestamptz IS NULL OR start_time <= $3)
		 ORDER BY start_time`, driverID, nullTime(start), nullTime(end))
	if err != nil {
		return nil, err
	}
	return scanDocs[model.DutyStatusInterval](rows)
}

func (p *Postgres) AppendLogEntry(ctx context.Context, e model.LogEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO log_entries (id, driver_id, ts, doc) VALUES ($1, $2, $3, $4)`,
		e.ID, e.DriverID, e.Timestamp, b)
	return err
}

func (p *Postgres) ListLogEntries(ctx context.Context, driverID string, start, end time.Time) ([]model.LogEntry, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT doc FROM log_entries
		 WHERE driver_id=$1 AND ($2::timestamptz IS NULL OR ts >= $2)
		   AND ($3::timestamptz IS NULL OR ts <= $3)
		 ORDER BY ts`, driverID, nullTime(start), nullTime(end))
	if err != nil {
		return nil, err
	}
	return scanDocs[model.LogEntry](rows)
}

func (p *Postgres) CreateViolation(ctx context.Context, v model.ComplianceViolation) (model.ComplianceViolation, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return model.ComplianceViolation{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO violations (id, driver_id, ts, doc) VALUES ($1, $2, $3, $4)`,
		v.ID, v.DriverID, v.Timestamp, b)
	if err != nil {
		return model.ComplianceViolation{}, err
	}
	return v, nil
}

func (p *Postgres) GetViolation(ctx context.Context, id string) (model.ComplianceViolation, error) {
	var v model.ComplianceViolation
	if err := p.getDoc(ctx, "violations", id, &v); err != nil {
		return model.ComplianceViolation{}, err
	}
	return v, nil
}

func (p *Postgres) UpdateViolation(ctx context.Context, v model.ComplianceViolation) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `UPDATE violations SET doc=$2 WHERE id=$1`, v.ID, b)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListViolations(ctx context.Context, driverID string) ([]model.ComplianceViolation, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT doc FROM violations WHERE driver_id=$1 ORDER BY ts`, driverID)
	if err != nil {
		return nil, err
	}
	return scanDocs[model.ComplianceViolation](rows)
}

func (p *Postgres) AppendWeightLog(ctx context.Context, l model.WeightComplianceLog) error {
	b, err := json.Marshal(l)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO weight_logs (id, driver_id, ts, doc) VALUES ($1, $2, $3, $4)`,
		l.ID, l.DriverID, l.Timestamp, b)
	return err
}

func (p *Postgres) ListWeightLogs(ctx context.Context, driverID string, start, end time.Time) ([]model.WeightComplianceLog, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT doc FROM weight_logs
		 WHERE driver_id=$1 AND ($2::timestamptz IS NULL OR ts >= $2)
		   AND ($3::timestamptz IS NULL OR ts <= $3)
		 ORDER BY ts`, driverID, nullTime(start), nullTime(end))
	if err != nil {
		return nil, err
	}
	return scanDocs[model.WeightComplianceLog](rows)
}

func (p *Postgres) MarkWeightLogsExported(ctx context.Context, driverID string, ids []string, at time.Time) error {
	for _, id := range ids {
		if _, err := p.db.ExecContext(ctx,
			`UPDATE weight_logs SET doc = jsonb_set(doc, '{exportedAt}', to_jsonb($3::timestamptz))
			 WHERE driver_id=$1 AND id=$2`, driverID, id, at); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateInspection(ctx context.Context, i model.WeightInspection) (model.WeightInspection, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return model.WeightInspection{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO inspections (id, driver_id, ts, doc) VALUES ($1, $2, $3, $4)`,
		i.ID, i.DriverID, i.InspectionDate, b)
	if err != nil {
		return model.WeightInspection{}, err
	}
	return i, nil
}

func (p *Postgres) ListInspections(ctx context.Context, driverID string) ([]model.WeightInspection, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT doc FROM inspections WHERE driver_id=$1 ORDER BY ts`, driverID)
	if err != nil {
		return nil, err
	}
	return scanDocs[model.WeightInspection](rows)
}

func (p *Postgres) CreateSubscription(ctx context.Context, s model.Subscription) (model.Subscription, error) {
	if err := p.putDoc(ctx, "subscriptions", s.ID, s); err != nil {
		return model.Subscription{}, err
	}
	return s, nil
}

func (p *Postgres) DeleteSubscription(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT doc FROM subscriptions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanDocs[model.Subscription](rows)
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }
func (p *Postgres) Close() error                   { return p.db.Close() }

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
