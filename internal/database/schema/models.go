// Package schema defines the publishing schema as gorm models and creates
// it on MySQL or Postgres.
//
// Queries never go through gorm; the models only drive table creation.
// All reads and writes use the database.Adapter.
package schema

import "time"

type User struct {
	ID                uint       `gorm:"primaryKey"`
	Username          string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email             string     `gorm:"type:varchar(100);uniqueIndex;not null"`
	Password          string     `gorm:"type:varchar(255);not null"`
	FullName          string     `gorm:"type:varchar(100);not null"`
	Phone             *string    `gorm:"type:varchar(20)"`
	Role              string     `gorm:"type:varchar(20);default:'user';index"`
	Status            string     `gorm:"type:varchar(20);default:'pending';index"`
	EmailVerified     bool       `gorm:"default:false"`
	VerificationToken *string    `gorm:"type:varchar(500)"`
	ResetToken        *string    `gorm:"type:varchar(500)"`
	ResetTokenExpiry  *time.Time `gorm:"type:timestamp"`
	LastLogin         *time.Time `gorm:"type:timestamp"`
	ProfileImage      *string    `gorm:"type:varchar(255)"`
	CreatedAt         time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }

type Author struct {
	ID                uint    `gorm:"primaryKey"`
	UserID            *uint   `gorm:"uniqueIndex"`
	StaffID           *string `gorm:"type:varchar(50);uniqueIndex"`
	Faculty           *string `gorm:"type:varchar(100);index"`
	Department        *string `gorm:"type:varchar(100)"`
	Qualifications    *string `gorm:"type:text"`
	Biography         *string `gorm:"type:text"`
	AreasOfExpertise  *string `gorm:"type:text"`
	OrcidID           *string `gorm:"type:varchar(50)"`
	GoogleScholarID   *string `gorm:"type:varchar(100)"`
	ResearchGateURL   *string `gorm:"type:varchar(255)"`
	LinkedinURL       *string `gorm:"type:varchar(255)"`
	TotalPublications int     `gorm:"default:0"`
	HIndex            int     `gorm:"default:0"`
	TotalCitations    int     `gorm:"default:0"`
	Awards            *string `gorm:"type:text"`
	CvURL             *string `gorm:"type:varchar(255)"`
	Status            string  `gorm:"type:varchar(20);default:'pending'"`
}

func (Author) TableName() string { return "authors" }

type Book struct {
	ID              uint       `gorm:"primaryKey"`
	ISBN            *string    `gorm:"column:isbn;type:varchar(20);uniqueIndex"`
	Title           string     `gorm:"type:varchar(255);not null"`
	Subtitle        *string    `gorm:"type:varchar(255)"`
	AuthorID        *uint      `gorm:"index"`
	CoAuthors       *string    `gorm:"type:text"`
	Description     *string    `gorm:"type:text"`
	Abstract        *string    `gorm:"type:text"`
	Category        *string    `gorm:"type:varchar(100);index"`
	Subcategory     *string    `gorm:"type:varchar(100)"`
	Keywords        *string    `gorm:"type:text"`
	ManuscriptFile  *string    `gorm:"type:varchar(255)"`
	CoverImage      *string    `gorm:"type:varchar(255)"`
	SampleChapter   *string    `gorm:"type:varchar(255)"`
	PageCount       *int
	WordCount       *int
	Language        string     `gorm:"type:varchar(50);default:'English'"`
	Status          string     `gorm:"type:varchar(30);default:'draft';index"`
	PublicationDate *time.Time `gorm:"type:date"`
	Price           *float64   `gorm:"type:decimal(10,2)"`
	Edition         *string    `gorm:"type:varchar(20)"`
	Format          string     `gorm:"type:varchar(20);default:'paperback'"`
	IsOpenAccess    bool       `gorm:"default:false"`
	ReviewerNotes   *string    `gorm:"type:text"`
	EditorNotes     *string    `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (Book) TableName() string { return "books" }

type Submission struct {
	ID             uint       `gorm:"primaryKey"`
	BookID         *uint      `gorm:"index"`
	SubmissionType string     `gorm:"type:varchar(30);not null"`
	Status         string     `gorm:"type:varchar(30);default:'pending';index"`
	AssignedTo     *uint
	DueDate        *time.Time `gorm:"type:date"`
	Priority       string     `gorm:"type:varchar(10);default:'medium'"`
	AdminNotes     *string    `gorm:"type:text"`
	AuthorNotes    *string    `gorm:"type:text"`
	SubmissionDate time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	CompletedDate  *time.Time `gorm:"type:timestamp"`
}

func (Submission) TableName() string { return "submissions" }

type Review struct {
	ID                   uint       `gorm:"primaryKey"`
	SubmissionID         *uint
	ReviewerID           *uint
	Rating               *int
	OriginalityScore     *int
	ClarityScore         *int
	MethodologyScore     *int
	ContributionScore    *int
	OverallScore         *float64   `gorm:"type:decimal(3,2)"`
	Comments             *string    `gorm:"type:text"`
	ConfidentialComments *string    `gorm:"type:text"`
	Recommendation       *string    `gorm:"type:varchar(30)"`
	Status               string     `gorm:"type:varchar(20);default:'pending'"`
	AssignedDate         time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	CompletedDate        *time.Time `gorm:"type:timestamp"`
}

func (Review) TableName() string { return "reviews" }

type Contract struct {
	ID                uint       `gorm:"primaryKey"`
	BookID            *uint
	AuthorID          *uint      `gorm:"index"`
	ContractType      string     `gorm:"type:varchar(20);default:'standard'"`
	ContractNumber    *string    `gorm:"type:varchar(50);uniqueIndex"`
	Status            string     `gorm:"type:varchar(20);default:'draft';index"`
	StartDate         *time.Time `gorm:"type:date"`
	EndDate           *time.Time `gorm:"type:date"`
	RoyaltyPercentage *float64   `gorm:"type:decimal(5,2)"`
	AdvanceAmount     *float64   `gorm:"type:decimal(10,2)"`
	PaymentSchedule   *string    `gorm:"type:text"`
	RightsGranted     *string    `gorm:"type:text"`
	Territory         *string    `gorm:"type:text"`
	DigitalRights     bool       `gorm:"default:true"`
	AudioRights       bool       `gorm:"default:false"`
	TranslationRights bool       `gorm:"default:false"`
	ContractFile      *string    `gorm:"type:varchar(255)"`
	SignedDate        *time.Time `gorm:"type:date"`
	CreatedAt         time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (Contract) TableName() string { return "contracts" }

type Royalty struct {
	ID                   uint       `gorm:"primaryKey"`
	ContractID           *uint
	BookID               *uint
	AuthorID             *uint
	PeriodStart          *time.Time `gorm:"type:date"`
	PeriodEnd            *time.Time `gorm:"type:date"`
	UnitsSold            int        `gorm:"default:0"`
	Revenue              float64    `gorm:"type:decimal(10,2);default:0"`
	RoyaltyAmount        float64    `gorm:"type:decimal(10,2);default:0"`
	PaymentStatus        string     `gorm:"type:varchar(20);default:'pending'"`
	PaymentDate          *time.Time `gorm:"type:date"`
	PaymentMethod        string     `gorm:"type:varchar(20);default:'bank_transfer'"`
	TransactionReference *string    `gorm:"type:varchar(100)"`
	Notes                *string    `gorm:"type:text"`
	CreatedAt            time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (Royalty) TableName() string { return "royalties" }

type Production struct {
	ID            uint       `gorm:"primaryKey"`
	BookID        *uint
	Stage         string     `gorm:"type:varchar(20);default:'typesetting'"`
	AssignedTo    *string    `gorm:"type:varchar(100)"`
	StartDate     *time.Time `gorm:"type:date"`
	DueDate       *time.Time `gorm:"type:date"`
	CompletedDate *time.Time `gorm:"type:date"`
	Status        string     `gorm:"type:varchar(20);default:'not_started'"`
	Notes         *string    `gorm:"type:text"`
	Files         *string    `gorm:"type:text"`
	CreatedAt     time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (Production) TableName() string { return "production" }

// Inventory.Available is maintained by the application as quantity minus reserved.
type Inventory struct {
	ID            uint       `gorm:"primaryKey"`
	BookID        *uint
	Format        string     `gorm:"type:varchar(20);not null"`
	Quantity      int        `gorm:"default:0"`
	Reserved      int        `gorm:"default:0"`
	Available     int        `gorm:"default:0"`
	ReorderLevel  int        `gorm:"default:50"`
	Location      *string    `gorm:"type:varchar(100)"`
	LastRestocked *time.Time `gorm:"type:date"`
	UnitCost      *float64   `gorm:"type:decimal(10,2)"`
	SellingPrice  *float64   `gorm:"type:decimal(10,2)"`
	CreatedAt     time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (Inventory) TableName() string { return "inventory" }

type Sale struct {
	ID            uint      `gorm:"primaryKey"`
	BookID        *uint
	Format        string    `gorm:"type:varchar(20);not null"`
	Quantity      int       `gorm:"not null"`
	UnitPrice     float64   `gorm:"type:decimal(10,2);not null"`
	TotalAmount   float64   `gorm:"type:decimal(10,2);default:0"`
	CustomerType  string    `gorm:"type:varchar(20);default:'student'"`
	CustomerEmail *string   `gorm:"type:varchar(100)"`
	CustomerName  *string   `gorm:"type:varchar(100)"`
	PaymentMethod string    `gorm:"type:varchar(20);default:'cash'"`
	PaymentStatus string    `gorm:"type:varchar(20);default:'pending'"`
	InvoiceNumber *string   `gorm:"type:varchar(50)"`
	SaleDate      time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	CreatedAt     time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (Sale) TableName() string { return "sales" }

type TrainingRegistration struct {
	ID                uint       `gorm:"primaryKey"`
	FullName          string     `gorm:"type:varchar(100);not null"`
	Email             string     `gorm:"type:varchar(100);not null;index"`
	StudentID         *string    `gorm:"type:varchar(50)"`
	Faculty           *string    `gorm:"type:varchar(100)"`
	Department        *string    `gorm:"type:varchar(100)"`
	Level             *string    `gorm:"type:varchar(20)"`
	TrainingType      string     `gorm:"type:varchar(40);not null"`
	TrainingMode      string     `gorm:"type:varchar(20);default:'in_person'"`
	PreferredDate     *time.Time `gorm:"type:date"`
	PreferredTime     *string    `gorm:"type:varchar(10)"`
	Status            string     `gorm:"type:varchar(20);default:'pending';index"`
	Attendance        bool       `gorm:"default:false"`
	CertificateIssued bool       `gorm:"default:false"`
	CertificateNumber *string    `gorm:"type:varchar(50)"`
	Feedback          *string    `gorm:"type:text"`
	CreatedAt         time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (TrainingRegistration) TableName() string { return "training_registrations" }

type Contact struct {
	ID           uint       `gorm:"primaryKey"`
	Name         string     `gorm:"type:varchar(100);not null"`
	Email        string     `gorm:"type:varchar(100);not null;index"`
	Phone        *string    `gorm:"type:varchar(20)"`
	Subject      string     `gorm:"type:varchar(200);not null"`
	Message      string     `gorm:"type:text;not null"`
	Category     string     `gorm:"type:varchar(20);default:'general'"`
	Status       string     `gorm:"type:varchar(20);default:'new';index"`
	AssignedTo   *uint
	Priority     string     `gorm:"type:varchar(10);default:'medium'"`
	Response     *string    `gorm:"type:text"`
	RespondedBy  *uint
	ResponseDate *time.Time `gorm:"type:timestamp"`
	CreatedAt    time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (Contact) TableName() string { return "contacts" }

type Setting struct {
	ID           uint      `gorm:"primaryKey"`
	SettingKey   string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	SettingValue *string   `gorm:"type:text"`
	SettingType  string    `gorm:"type:varchar(20);default:'string'"`
	Category     *string   `gorm:"type:varchar(50);index"`
	Description  *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (Setting) TableName() string { return "settings" }

type Notification struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"index;not null"`
	Type       string     `gorm:"type:varchar(50);not null"`
	Title      string     `gorm:"type:varchar(255);not null"`
	Message    string     `gorm:"type:text"`
	EntityType *string    `gorm:"type:varchar(50)"`
	EntityID   *uint
	ReadAt     *time.Time `gorm:"type:timestamp"`
	CreatedAt  time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

func (Notification) TableName() string { return "notifications" }

// Models returns every model in creation order.
func Models() []any {
	return []any{
		&User{},
		&Author{},
		&Book{},
		&Submission{},
		&Review{},
		&Contract{},
		&Royalty{},
		&Production{},
		&Inventory{},
		&Sale{},
		&TrainingRegistration{},
		&Contact{},
		&Setting{},
		&Notification{},
	}
}
