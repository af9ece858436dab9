package authors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/unipress/publishing/internal/database"
)

var (
	ErrEmailTaken   = errors.New("email is already in use by another account")
	ErrBookNotOwned = errors.New("book does not belong to this author")
)

// ProfileUpdate changes an author's own profile. Nil fields keep their
// current value; empty strings clear optional columns. Name and email are
// required columns and ignore blank values.
type ProfileUpdate struct {
	FullName         *string `json:"full_name"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	StaffID          *string `json:"staff_id"`
	Faculty          *string `json:"faculty"`
	Department       *string `json:"department"`
	Qualifications   *string `json:"qualifications"`
	Biography        *string `json:"biography"`
	AreasOfExpertise *string `json:"areas_of_expertise"`
	OrcidID          *string `json:"orcid_id"`
	GoogleScholarID  *string `json:"google_scholar_id"`
	LinkedinURL      *string `json:"linkedin_url"`
}

type BookCounts struct {
	TotalBooks        int64 `json:"total_books"`
	PublishedBooks    int64 `json:"published_books"`
	InProductionBooks int64 `json:"in_production_books"`
	UnderReviewBooks  int64 `json:"under_review_books"`
	RevisionBooks     int64 `json:"revision_books"`
}

type RoyaltyTotals struct {
	TotalRoyalties   float64 `json:"total_royalties"`
	PaidRoyalties    float64 `json:"paid_royalties"`
	PendingRoyalties float64 `json:"pending_royalties"`
}

// Dashboard is the signed-in author's overview.
type Dashboard struct {
	Books         []database.Row `json:"books"`
	Stats         BookCounts     `json:"stats"`
	RecentReviews []database.Row `json:"recentReviews"`
	Royalties     RoyaltyTotals  `json:"royalties"`
}

// AuthorBook is one of the author's books with its production stages,
// reviews, recent sales and royalty statements.
type AuthorBook struct {
	Book      database.Row   `json:"book"`
	Progress  []database.Row `json:"progress"`
	Reviews   []database.Row `json:"reviews"`
	Sales     []database.Row `json:"sales"`
	Royalties []database.Row `json:"royalties"`
}

const profileQuery = `SELECT u.id as user_id, u.full_name, u.email, u.phone, u.profile_image, u.status as user_status,
	       a.id as author_id, a.staff_id, a.faculty, a.department, a.qualifications,
	       a.biography, a.areas_of_expertise, a.orcid_id, a.google_scholar_id, a.linkedin_url, a.status as author_status
	FROM users u
	LEFT JOIN authors a ON a.user_id = u.id
	WHERE u.id = ?`

// Profile returns the account and author profile of a user.
func (r *Repository) Profile(ctx context.Context, userID int64) (database.Row, error) {
	row, err := r.db.QueryOne(ctx, profileQuery, userID)
	if errors.Is(err, database.ErrNoRows) {
		return nil, ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author profile: %w", err)
	}
	return row, nil
}

func (r *Repository) authorIDForUser(ctx context.Context, userID int64) (int64, error) {
	id, err := r.db.ScalarInt(ctx, "id", "SELECT id FROM authors WHERE user_id = ?", userID)
	if errors.Is(err, database.ErrNoRows) {
		return 0, ErrAuthorNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get author: %w", err)
	}
	return id, nil
}

func required(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}

// UpdateProfile applies u to the user's account and author profile and
// returns the updated profile. Only columns present in the live tables are
// written.
func (r *Repository) UpdateProfile(ctx context.Context, userID int64, u ProfileUpdate) (database.Row, error) {
	authorID, err := r.authorIDForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var email string
	if required(u.Email) {
		email = strings.TrimSpace(*u.Email)
		rows, err := r.db.QueryRows(ctx, "SELECT id FROM users WHERE email = ? AND id != ?", email, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if len(rows) > 0 {
			return nil, ErrEmailTaken
		}
	}

	userCols, err := r.db.TableColumns(ctx, "users")
	if err != nil {
		return nil, fmt.Errorf("failed to read users columns: %w", err)
	}
	authorCols, err := r.db.TableColumns(ctx, "authors")
	if err != nil {
		return nil, fmt.Errorf("failed to read authors columns: %w", err)
	}

	var user []column
	if required(u.FullName) {
		user = append(user, column{"full_name", strings.TrimSpace(*u.FullName)})
	}
	if email != "" {
		user = append(user, column{"email", email}, column{"username", email})
	}
	user = appendOptional(user, "phone", u.Phone)
	if err := r.update(ctx, "users", userCols, user, userID); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	var author []column
	author = appendOptional(author, "staff_id", u.StaffID)
	author = appendOptional(author, "faculty", u.Faculty)
	author = appendOptional(author, "department", u.Department)
	author = appendOptional(author, "qualifications", u.Qualifications)
	author = appendOptional(author, "biography", u.Biography)
	author = appendOptional(author, "areas_of_expertise", u.AreasOfExpertise)
	author = appendOptional(author, "orcid_id", u.OrcidID)
	author = appendOptional(author, "google_scholar_id", u.GoogleScholarID)
	author = appendOptional(author, "linkedin_url", u.LinkedinURL)
	if err := r.update(ctx, "authors", authorCols, author, authorID); err != nil {
		return nil, fmt.Errorf("failed to update author profile: %w", err)
	}

	return r.Profile(ctx, userID)
}

func appendOptional(cols []column, name string, p *string) []column {
	if p == nil {
		return cols
	}
	return append(cols, column{name, nullable(*p)})
}

// update writes the columns that exist in the table. Nothing is sent when
// none remain.
func (r *Repository) update(ctx context.Context, table string, existing map[string]bool, cols []column, id int64) error {
	var sets []string
	var args []any
	for _, c := range cols {
		if !existing[c.name] {
			continue
		}
		sets = append(sets, c.name+" = ?")
		args = append(args, c.value)
	}
	if len(sets) == 0 {
		return nil
	}

	_, err := r.db.Execute(ctx, "UPDATE "+table+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", append(args, id)...)
	return err
}

// Dashboard loads the author's books with review and production counts,
// status totals, the five latest reviews and royalty totals.
func (r *Repository) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	authorID, err := r.authorIDForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.db.QueryRows(gctx, `SELECT b.*,
			       (SELECT COUNT(*) FROM reviews rv JOIN submissions s ON rv.submission_id = s.id WHERE s.book_id = b.id) as review_count,
			       (SELECT COUNT(*) FROM production p WHERE p.book_id = b.id AND p.status = 'completed') as progress_count,
			       (SELECT MAX(p.completed_date) FROM production p WHERE p.book_id = b.id) as last_progress_date
			FROM books b
			WHERE b.author_id = ?
			ORDER BY b.updated_at DESC`, authorID)
		d.Books = rows
		return err
	})
	g.Go(func() error {
		row, err := r.db.QueryOne(gctx, `SELECT COUNT(*) as total_books,
			       SUM(CASE WHEN status = 'published' THEN 1 ELSE 0 END) as published_books,
			       SUM(CASE WHEN status = 'in_production' THEN 1 ELSE 0 END) as in_production_books,
			       SUM(CASE WHEN status = 'under_review' THEN 1 ELSE 0 END) as under_review_books,
			       SUM(CASE WHEN status = 'revisions_requested' THEN 1 ELSE 0 END) as revision_books
			FROM books
			WHERE author_id = ?`, authorID)
		if err != nil {
			return err
		}
		d.Stats = BookCounts{
			TotalBooks:        row.Int("total_books"),
			PublishedBooks:    row.Int("published_books"),
			InProductionBooks: row.Int("in_production_books"),
			UnderReviewBooks:  row.Int("under_review_books"),
			RevisionBooks:     row.Int("revision_books"),
		}
		return nil
	})
	g.Go(func() error {
		rows, err := r.db.QueryRows(gctx, `SELECT rv.id, rv.rating, rv.recommendation, rv.status, rv.comments, rv.completed_date,
			       b.title as book_title, u.full_name as reviewer_name
			FROM reviews rv
			JOIN submissions s ON rv.submission_id = s.id
			JOIN books b ON s.book_id = b.id
			LEFT JOIN users u ON rv.reviewer_id = u.id
			WHERE b.author_id = ?
			ORDER BY rv.assigned_date DESC
			LIMIT 5`, authorID)
		d.RecentReviews = rows
		return err
	})
	g.Go(func() error {
		row, err := r.db.QueryOne(gctx, `SELECT SUM(royalty_amount) as total_royalties,
			       SUM(CASE WHEN payment_status = 'paid' THEN royalty_amount ELSE 0 END) as paid_royalties,
			       SUM(CASE WHEN payment_status = 'pending' THEN royalty_amount ELSE 0 END) as pending_royalties
			FROM royalties
			WHERE author_id = ?`, authorID)
		if err != nil {
			return err
		}
		d.Royalties = RoyaltyTotals{
			TotalRoyalties:   row.Float("total_royalties"),
			PaidRoyalties:    row.Float("paid_royalties"),
			PendingRoyalties: row.Float("pending_royalties"),
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load author dashboard: %w", err)
	}
	return &d, nil
}

// BookForAuthor returns one of the user's books with its history.
// ErrBookNotOwned is returned when the book is missing or written by
// someone else.
func (r *Repository) BookForAuthor(ctx context.Context, userID, bookID int64) (*AuthorBook, error) {
	book, err := r.db.QueryOne(ctx,
		"SELECT b.* FROM books b JOIN authors a ON b.author_id = a.id WHERE a.user_id = ? AND b.id = ?", userID, bookID)
	if errors.Is(err, database.ErrNoRows) {
		return nil, ErrBookNotOwned
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	ab := AuthorBook{Book: book}
	if ab.Progress, err = r.production.ForBook(ctx, bookID); err != nil {
		return nil, err
	}

	related := []struct {
		dst   *[]database.Row
		key   string
		query string
	}{
		{&ab.Reviews, "reviews", `SELECT rv.id, rv.rating, rv.recommendation, rv.status, rv.comments, rv.completed_date
			FROM reviews rv JOIN submissions s ON rv.submission_id = s.id
			WHERE s.book_id = ?
			ORDER BY rv.assigned_date DESC`},
		{&ab.Sales, "sales", `SELECT id, format, quantity, unit_price, total_amount, customer_type, payment_status, sale_date
			FROM sales WHERE book_id = ? ORDER BY sale_date DESC LIMIT 10`},
		{&ab.Royalties, "royalties", "SELECT * FROM royalties WHERE book_id = ? ORDER BY period_end DESC"},
	}
	for _, rel := range related {
		rows, err := r.db.QueryRows(ctx, rel.query, bookID)
		if err != nil {
			return nil, fmt.Errorf("failed to load book %s: %w", rel.key, err)
		}
		*rel.dst = rows
	}
	return &ab, nil
}
