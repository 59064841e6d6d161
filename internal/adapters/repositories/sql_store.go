package repositories

import (
	"bevforge-delivery/internal/domain"
	"bevforge-delivery/internal/platform/db"
	"bevforge-delivery/internal/ports"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQL-backed implementation of the Store port.
// Queries are written with "?" placeholders and rebound to "$n" for
// Postgres; everything else (upserts, types) is shared by both dialects.
// Timestamps are stored as unix milliseconds.
type SQLStore struct {
	DB       *sql.DB
	postgres bool
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{DB: db, postgres: driver == "pgx"}
}

func (s *SQLStore) q(query string) string { return db.Rebind(s.postgres, query) }

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func toNullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromNullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func (s *SQLStore) check() error {
	if s.DB == nil {
		return errors.New("sql store: DB is nil")
	}
	return nil
}

// inTx runs fn in one transaction that is committed only if fn succeeds.
func (s *SQLStore) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	if err := s.check(); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", op, err)
	}
	return nil
}

// Apply stores containers, truck and route of one action in a single
// transaction.
func (s *SQLStore) Apply(ctx context.Context, ch ports.Changes) error {
	return s.inTx(ctx, "apply changes", func(tx *sql.Tx) error {
		if len(ch.Containers) > 0 {
			if err := s.saveContainers(ctx, tx, ch.Containers); err != nil {
				return err
			}
		}
		if ch.Truck != nil {
			if err := s.saveTruck(ctx, tx, ch.Truck); err != nil {
				return err
			}
		}
		if ch.DeleteRouteID != "" {
			if err := s.deleteRoute(ctx, tx, ch.DeleteRouteID); err != nil {
				return err
			}
		}
		if ch.Route != nil {
			if err := s.saveRoute(ctx, tx, ch.Route); err != nil {
				return err
			}
		}
		return nil
	})
}

// ---- trucks

func (s *SQLStore) ListTrucks(ctx context.Context) ([]*domain.Truck, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.queryTrucks(ctx, s.DB, `SELECT id, name, capacity, status, departed_at FROM trucks ORDER BY id;`)
}

func (s *SQLStore) GetTruck(ctx context.Context, id string) (*domain.Truck, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	trucks, err := s.queryTrucks(ctx, s.DB, `SELECT id, name, capacity, status, departed_at FROM trucks WHERE id = ?;`, id)
	if err != nil {
		return nil, err
	}
	if len(trucks) == 0 {
		return nil, fmt.Errorf("get truck %q: %w", id, domain.ErrNotFound)
	}
	return trucks[0], nil
}

func (s *SQLStore) queryTrucks(ctx context.Context, q queryer, query string, args ...any) ([]*domain.Truck, error) {
	rows, err := q.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list trucks: query trucks table: %w", err)
	}
	defer rows.Close()

	trucks := make([]*domain.Truck, 0, 8)
	byID := make(map[string]*domain.Truck)
	for rows.Next() {
		var t domain.Truck
		var status string
		var departed sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &status, &departed); err != nil {
			return nil, fmt.Errorf("list trucks: scan row: %w", err)
		}
		t.Status = domain.TruckStatus(status)
		t.DepartedAt = fromNullMillis(departed)
		t.Containers = []string{}
		trucks = append(trucks, &t)
		byID[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trucks: row iteration: %w", err)
	}
	if len(trucks) == 0 {
		return trucks, nil
	}

	crow, err := q.QueryContext(ctx, `SELECT truck_id, container_id FROM truck_containers ORDER BY truck_id, position;`)
	if err != nil {
		return nil, fmt.Errorf("list trucks: query truck_containers table: %w", err)
	}
	defer crow.Close()

	for crow.Next() {
		var truckID, containerID string
		if err := crow.Scan(&truckID, &containerID); err != nil {
			return nil, fmt.Errorf("list trucks: scan truck container: %w", err)
		}
		if t, ok := byID[truckID]; ok {
			t.Containers = append(t.Containers, containerID)
		}
	}
	if err := crow.Err(); err != nil {
		return nil, fmt.Errorf("list trucks: truck container iteration: %w", err)
	}

	return trucks, nil
}

func (s *SQLStore) SaveTruck(ctx context.Context, t *domain.Truck) error {
	return s.inTx(ctx, "save truck", func(tx *sql.Tx) error { return s.saveTruck(ctx, tx, t) })
}

func (s *SQLStore) saveTruck(ctx context.Context, tx *sql.Tx, t *domain.Truck) error {
	if _, err := tx.ExecContext(ctx, s.q(`
	INSERT INTO trucks (id, name, capacity, status, departed_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET name = excluded.name,
		capacity = excluded.capacity,
		status = excluded.status,
		departed_at = excluded.departed_at;
	`), t.ID, t.Name, t.Capacity, string(t.Status), toNullMillis(t.DepartedAt)); err != nil {
		return fmt.Errorf("truck %q: upsert: %w", t.ID, err)
	}

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM truck_containers WHERE truck_id = ?;`), t.ID); err != nil {
		return fmt.Errorf("truck %q: clear containers: %w", t.ID, err)
	}
	if len(t.Containers) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, s.q(`
	INSERT INTO truck_containers (truck_id, container_id, position) VALUES (?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("truck %q: prepare insert: %w", t.ID, err)
	}
	defer stmt.Close()

	for i, id := range t.Containers {
		if _, err := stmt.ExecContext(ctx, t.ID, id, i); err != nil {
			return fmt.Errorf("truck %q: insert container %q: %w", t.ID, id, err)
		}
	}
	return nil
}

// ---- containers

const containerColumns = `id, type, product, batch_id, order_id, customer_id, status, location, truck_id, parent_id, weight, updated_at`

func (s *SQLStore) ListContainers(ctx context.Context) ([]*domain.Container, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.queryContainers(ctx, `SELECT `+containerColumns+` FROM containers ORDER BY id;`)
}

func (s *SQLStore) GetContainer(ctx context.Context, id string) (*domain.Container, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	cs, err := s.queryContainers(ctx, `SELECT `+containerColumns+` FROM containers WHERE id = ?;`, id)
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return nil, fmt.Errorf("get container %q: %w", id, domain.ErrNotFound)
	}
	return cs[0], nil
}

func (s *SQLStore) queryContainers(ctx context.Context, query string, args ...any) ([]*domain.Container, error) {
	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list containers: query containers table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Container, 0, 64)
	byID := make(map[string]*domain.Container)
	for rows.Next() {
		var c domain.Container
		var typ, status string
		var updated int64
		if err := rows.Scan(
			&c.ID, &typ, &c.Product, &c.BatchID, &c.OrderID, &c.CustomerID,
			&status, &c.Location, &c.TruckID, &c.ParentID, &c.Weight, &updated,
		); err != nil {
			return nil, fmt.Errorf("list containers: scan row: %w", err)
		}
		c.Type = domain.ContainerType(typ)
		c.Status = domain.ContainerStatus(status)
		c.UpdatedAt = fromMillis(updated)
		c.History = []domain.ContainerEvent{}
		out = append(out, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list containers: row iteration: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	// Single-container lookups only need that container's history.
	evQuery := `SELECT container_id, at, action, location, notes FROM container_events ORDER BY container_id, seq;`
	evArgs := []any{}
	if len(out) == 1 {
		evQuery = `SELECT container_id, at, action, location, notes FROM container_events WHERE container_id = ? ORDER BY seq;`
		evArgs = append(evArgs, out[0].ID)
	}

	ev, err := s.DB.QueryContext(ctx, s.q(evQuery), evArgs...)
	if err != nil {
		return nil, fmt.Errorf("list containers: query container_events table: %w", err)
	}
	defer ev.Close()

	for ev.Next() {
		var id string
		var at int64
		var e domain.ContainerEvent
		if err := ev.Scan(&id, &at, &e.Action, &e.Location, &e.Notes); err != nil {
			return nil, fmt.Errorf("list containers: scan event: %w", err)
		}
		e.At = fromMillis(at)
		if c, ok := byID[id]; ok {
			c.History = append(c.History, e)
		}
	}
	if err := ev.Err(); err != nil {
		return nil, fmt.Errorf("list containers: event iteration: %w", err)
	}

	return out, nil
}

func (s *SQLStore) SaveContainers(ctx context.Context, cs ...*domain.Container) error {
	if len(cs) == 0 {
		return s.check()
	}
	return s.inTx(ctx, "save containers", func(tx *sql.Tx) error { return s.saveContainers(ctx, tx, cs) })
}

func (s *SQLStore) saveContainers(ctx context.Context, tx *sql.Tx, cs []*domain.Container) error {
	upsert, err := tx.PrepareContext(ctx, s.q(`
	INSERT INTO containers (`+containerColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET type = excluded.type,
		product = excluded.product,
		batch_id = excluded.batch_id,
		order_id = excluded.order_id,
		customer_id = excluded.customer_id,
		status = excluded.status,
		location = excluded.location,
		truck_id = excluded.truck_id,
		parent_id = excluded.parent_id,
		weight = excluded.weight,
		updated_at = excluded.updated_at;
	`))
	if err != nil {
		return fmt.Errorf("containers: prepare upsert: %w", err)
	}
	defer upsert.Close()

	clearEvents, err := tx.PrepareContext(ctx, s.q(`DELETE FROM container_events WHERE container_id = ?;`))
	if err != nil {
		return fmt.Errorf("containers: prepare clear events: %w", err)
	}
	defer clearEvents.Close()

	insertEvent, err := tx.PrepareContext(ctx, s.q(`
	INSERT INTO container_events (container_id, seq, at, action, location, notes)
	VALUES (?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("containers: prepare insert event: %w", err)
	}
	defer insertEvent.Close()

	for _, c := range cs {
		if strings.TrimSpace(c.ID) == "" {
			return errors.New("containers: empty container id")
		}

		if _, err := upsert.ExecContext(ctx,
			c.ID, string(c.Type), c.Product, c.BatchID, c.OrderID, c.CustomerID,
			string(c.Status), c.Location, c.TruckID, c.ParentID, c.Weight, toMillis(c.UpdatedAt),
		); err != nil {
			return fmt.Errorf("container %q: upsert: %w", c.ID, err)
		}

		if _, err := clearEvents.ExecContext(ctx, c.ID); err != nil {
			return fmt.Errorf("container %q: clear events: %w", c.ID, err)
		}
		for i, e := range c.History {
			if _, err := insertEvent.ExecContext(ctx, c.ID, i, toMillis(e.At), e.Action, e.Location, e.Notes); err != nil {
				return fmt.Errorf("container %q: insert event #%d: %w", c.ID, i, err)
			}
		}
	}
	return nil
}

// ---- routes

const routeColumns = `id, truck_id, current_stop_index, status, created_at, started_at, completed_at`

func (s *SQLStore) ActiveRoute(ctx context.Context, truckID string) (*domain.DeliveryRoute, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	routes, err := s.queryRoutes(ctx, `
	SELECT `+routeColumns+`
	FROM routes
	WHERE truck_id = ? AND status <> ?
	ORDER BY created_at DESC;
	`, truckID, string(domain.RouteCompleted))
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("active route for truck %q: %w", truckID, domain.ErrNotFound)
	}
	return routes[0], nil
}

func (s *SQLStore) ListRoutes(ctx context.Context) ([]*domain.DeliveryRoute, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.queryRoutes(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY created_at, id;`)
}

func (s *SQLStore) queryRoutes(ctx context.Context, query string, args ...any) ([]*domain.DeliveryRoute, error) {
	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.DeliveryRoute, 0, 8)
	for rows.Next() {
		var r domain.DeliveryRoute
		var status string
		var created int64
		var started, completed sql.NullInt64
		if err := rows.Scan(&r.ID, &r.TruckID, &r.CurrentStopIndex, &status, &created, &started, &completed); err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		r.Status = domain.RouteStatus(status)
		r.CreatedAt = fromMillis(created)
		r.StartedAt = fromNullMillis(started)
		r.CompletedAt = fromNullMillis(completed)
		r.Stops = []domain.DeliveryStop{}
		routes = append(routes, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	for _, r := range routes {
		stops, err := s.routeStops(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		r.Stops = stops
	}
	return routes, nil
}

func (s *SQLStore) routeStops(ctx context.Context, routeID string) ([]domain.DeliveryStop, error) {
	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT id, customer_id, customer_name, address, order_ids, container_ids, status, completed_at
	FROM route_stops
	WHERE route_id = ?
	ORDER BY position;
	`), routeID)
	if err != nil {
		return nil, fmt.Errorf("list route stops %q: query: %w", routeID, err)
	}
	defer rows.Close()

	stops := []domain.DeliveryStop{}
	for rows.Next() {
		var st domain.DeliveryStop
		var orderIDs, containerIDs, status string
		var completed sql.NullInt64
		if err := rows.Scan(&st.ID, &st.CustomerID, &st.CustomerName, &st.Address, &orderIDs, &containerIDs, &status, &completed); err != nil {
			return nil, fmt.Errorf("list route stops %q: scan row: %w", routeID, err)
		}
		if err := json.Unmarshal([]byte(orderIDs), &st.OrderIDs); err != nil {
			return nil, fmt.Errorf("list route stops %q: decode order ids: %w", routeID, err)
		}
		if err := json.Unmarshal([]byte(containerIDs), &st.ContainerIDs); err != nil {
			return nil, fmt.Errorf("list route stops %q: decode container ids: %w", routeID, err)
		}
		st.Status = domain.StopStatus(status)
		st.CompletedAt = fromNullMillis(completed)
		stops = append(stops, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list route stops %q: row iteration: %w", routeID, err)
	}
	return stops, nil
}

func (s *SQLStore) SaveRoute(ctx context.Context, r *domain.DeliveryRoute) error {
	return s.inTx(ctx, "save route", func(tx *sql.Tx) error { return s.saveRoute(ctx, tx, r) })
}

func (s *SQLStore) saveRoute(ctx context.Context, tx *sql.Tx, r *domain.DeliveryRoute) error {
	if _, err := tx.ExecContext(ctx, s.q(`
	INSERT INTO routes (`+routeColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET truck_id = excluded.truck_id,
		current_stop_index = excluded.current_stop_index,
		status = excluded.status,
		started_at = excluded.started_at,
		completed_at = excluded.completed_at;
	`), r.ID, r.TruckID, r.CurrentStopIndex, string(r.Status), toMillis(r.CreatedAt),
		toNullMillis(r.StartedAt), toNullMillis(r.CompletedAt)); err != nil {
		return fmt.Errorf("route %q: upsert: %w", r.ID, err)
	}

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM route_stops WHERE route_id = ?;`), r.ID); err != nil {
		return fmt.Errorf("route %q: clear stops: %w", r.ID, err)
	}
	if len(r.Stops) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, s.q(`
	INSERT INTO route_stops (
		route_id, position, id, customer_id, customer_name, address,
		order_ids, container_ids, status, completed_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("route %q: prepare insert: %w", r.ID, err)
	}
	defer stmt.Close()

	for i, st := range r.Stops {
		orderIDs, err := json.Marshal(nonNil(st.OrderIDs))
		if err != nil {
			return fmt.Errorf("route %q: encode order ids: %w", r.ID, err)
		}
		containerIDs, err := json.Marshal(nonNil(st.ContainerIDs))
		if err != nil {
			return fmt.Errorf("route %q: encode container ids: %w", r.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			r.ID, i, st.ID, st.CustomerID, st.CustomerName, st.Address,
			string(orderIDs), string(containerIDs), string(st.Status), toNullMillis(st.CompletedAt),
		); err != nil {
			return fmt.Errorf("route %q: insert stop %q: %w", r.ID, st.ID, err)
		}
	}
	return nil
}

func (s *SQLStore) DeleteRoute(ctx context.Context, routeID string) error {
	return s.inTx(ctx, "delete route", func(tx *sql.Tx) error { return s.deleteRoute(ctx, tx, routeID) })
}

func (s *SQLStore) deleteRoute(ctx context.Context, tx *sql.Tx, routeID string) error {
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM route_stops WHERE route_id = ?;`), routeID); err != nil {
		return fmt.Errorf("route %q: delete stops: %w", routeID, err)
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM routes WHERE id = ?;`), routeID); err != nil {
		return fmt.Errorf("route %q: delete: %w", routeID, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
