package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/forttask/forttask/internal/model"
)

type BillStore struct {
	db *sql.DB
}

func NewBillStore(db *sql.DB) *BillStore {
	return &BillStore{db: db}
}

func scanBill(scanner interface{ Scan(...any) error }) (*model.Bill, error) {
	var b model.Bill
	err := scanner.Scan(
		&b.ID, &b.Name, &b.Amount, &b.DueDate, &b.Description,
		&b.HouseholdID, &b.CreatedByID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const billCols = `id, name, amount, due_date, description, household_id, created_by_id, created_at, updated_at`

func (s *BillStore) Create(name string, amount float64, dueDate time.Time, description string, householdID, createdByID int64) (*model.Bill, error) {
	result, err := s.db.Exec(
		`INSERT INTO bills (name, amount, due_date, description, household_id, created_by_id) VALUES (?, ?, ?, ?, ?, ?)`,
		name, amount, dueDate.UTC(), description, householdID, createdByID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert bill: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BillStore) GetByID(id int64) (*model.Bill, error) {
	row := s.db.QueryRow(`SELECT `+billCols+` FROM bills WHERE id = ?`, id)
	b, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	return b, nil
}

func (s *BillStore) ListByHousehold(householdID int64) ([]model.Bill, error) {
	rows, err := s.db.Query(
		`SELECT `+billCols+` FROM bills WHERE household_id = ? ORDER BY due_date ASC, name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

func (s *BillStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return nil
}
