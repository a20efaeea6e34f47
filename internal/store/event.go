package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/forttask/forttask/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := scanner.Scan(
		&e.ID, &e.Name, &e.Description, &e.Date,
		&e.HouseholdID, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const eventCols = `id, name, description, date, household_id, created_by_id, created_at, updated_at`

// Create inserts the event and its attendee rows in one transaction.
func (s *EventStore) Create(name, description string, date time.Time, householdID, createdByID int64, attendees []int64) (*model.Event, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO events (name, description, date, household_id, created_by_id) VALUES (?, ?, ?, ?, ?)`,
		name, description, date.UTC(), householdID, createdByID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, userID := range attendees {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO event_attendees (event_id, user_id) VALUES (?, ?)`,
			id, userID,
		); err != nil {
			return nil, fmt.Errorf("insert attendee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	e.Attendees, err = s.listAttendees(id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByAttendee returns all events the given user attends, soonest first.
func (s *EventStore) ListByAttendee(userID int64) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM events
		 WHERE id IN (SELECT event_id FROM event_attendees WHERE user_id = ?)
		 ORDER BY date ASC, name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by attendee: %w", err)
	}
	return s.collectWithAttendees(rows)
}

func (s *EventStore) ListByHousehold(householdID int64) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM events WHERE household_id = ? ORDER BY date ASC, name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.collectWithAttendees(rows)
}

func (s *EventStore) collectWithAttendees(rows *sql.Rows) ([]model.Event, error) {
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range events {
		attendees, err := s.listAttendees(events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].Attendees = attendees
	}
	return events, nil
}

func (s *EventStore) listAttendees(eventID int64) ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT user_id FROM event_attendees WHERE event_id = ? ORDER BY user_id ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes the event and its attendee rows together.
func (s *EventStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM event_attendees WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("delete attendees: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return tx.Commit()
}
