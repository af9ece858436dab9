// Package contracts provides database operations for publishing contracts.
//
// # Usage
//
//	repo := contracts.NewRepository(db)
//	expiring, err := repo.ExpiringWithin(ctx, 30)
package contracts

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/unipress/publishing/internal/database"
)

type ListFilter struct {
	Status   string
	Type     string
	AuthorID int64
}

// NewContract holds the terms of a contract to draft. Empty strings are
// stored as NULL.
type NewContract struct {
	BookID            int64    `json:"book_id"`
	AuthorID          int64    `json:"author_id"`
	ContractType      string   `json:"contract_type"`
	RoyaltyPercentage *float64 `json:"royalty_percentage"`
	AdvanceAmount     *float64 `json:"advance_amount"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	RightsGranted     string   `json:"rights_granted"`
	Territory         string   `json:"territory"`
	PaymentSchedule   string   `json:"payment_schedule"`
}

// Expiring is an active contract close to its end date.
type Expiring struct {
	ID             int64
	ContractNumber string
	BookTitle      string
	AuthorID       int64
	UserID         int64
	EndDate        time.Time
	DaysLeft       int64
}

type Repository struct {
	db        *database.Adapter
	newNumber func() string
}

func NewRepository(db *database.Adapter) *Repository {
	return &Repository{db: db, newNumber: contractNumber}
}

func contractNumber() string {
	return fmt.Sprintf("CONTRACT-%d-%d", time.Now().UnixMilli(), rand.IntN(1000))
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// List returns contracts with their book and author, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter, page database.PageRequest) ([]database.Row, error) {
	var where database.Filter
	where.Add("c.status = ?", f.Status)
	where.Add("c.contract_type = ?", f.Type)
	where.Add("c.author_id = ?", f.AuthorID)

	args := append(where.Args(), page.Limit, page.Offset())
	rows, err := r.db.QueryRows(ctx, `
		SELECT c.*, b.title as book_title, u.full_name as author_name,
		       u.email as author_email, u.phone as author_phone
		FROM contracts c
		JOIN books b ON c.book_id = b.id
		JOIN authors a ON c.author_id = a.id
		LEFT JOIN users u ON a.user_id = u.id
		WHERE 1=1`+where.SQL()+" ORDER BY c.created_at DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return rows, nil
}

// Create drafts a contract under a generated contract number and returns
// its id and number.
func (r *Repository) Create(ctx context.Context, c NewContract) (int64, string, error) {
	number := r.newNumber()
	contractType := c.ContractType
	if contractType == "" {
		contractType = "standard"
	}

	res, err := r.db.Execute(ctx, `INSERT INTO contracts (
		book_id, author_id, contract_type, contract_number,
		royalty_percentage, advance_amount, start_date, end_date,
		rights_granted, territory, payment_schedule
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.BookID, c.AuthorID, contractType, number,
		nullableFloat(c.RoyaltyPercentage), nullableFloat(c.AdvanceAmount), nullable(c.StartDate), nullable(c.EndDate),
		nullable(c.RightsGranted), nullable(c.Territory), nullable(c.PaymentSchedule))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create contract: %w", err)
	}
	return res.InsertID(), number, nil
}

// ExpiringWithin returns active contracts ending in the next days days,
// soonest first.
func (r *Repository) ExpiringWithin(ctx context.Context, days int) ([]Expiring, error) {
	rows, err := r.db.QueryRows(ctx, `
		SELECT c.id, c.contract_number, c.end_date, c.author_id, a.user_id, b.title as book_title,
		       DATEDIFF(c.end_date, CURDATE()) as days_left
		FROM contracts c
		JOIN authors a ON c.author_id = a.id
		LEFT JOIN books b ON c.book_id = b.id
		WHERE c.status = 'active' AND c.end_date IS NOT NULL
		  AND DATEDIFF(c.end_date, CURDATE()) BETWEEN 0 AND ?
		ORDER BY c.end_date ASC`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get expiring contracts: %w", err)
	}

	expiring := make([]Expiring, 0, len(rows))
	for _, row := range rows {
		expiring = append(expiring, Expiring{
			ID:             row.Int("id"),
			ContractNumber: row.String("contract_number"),
			BookTitle:      row.String("book_title"),
			AuthorID:       row.Int("author_id"),
			UserID:         row.Int("user_id"),
			EndDate:        row.Time("end_date"),
			DaysLeft:       row.Int("days_left"),
		})
	}
	return expiring, nil
}
