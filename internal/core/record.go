package core

import (
	"strings"
	"time"
)

type (
	Category      string
	SavingsType   string
	SavingsCat    string
	PaymentMethod string
	Currency      string
	Frequency     string
	SavingsSource string
)

const (
	CatFood          Category = "Food"
	CatTransport     Category = "Transportation"
	CatHousing       Category = "Housing"
	CatUtilities     Category = "Utilities"
	CatHealthcare    Category = "Healthcare"
	CatEntertainment Category = "Entertainment"
	CatShopping      Category = "Shopping"
	CatEducation     Category = "Education"
	CatTravel        Category = "Travel"
	CatInsurance     Category = "Insurance"
	CatPersonalCare  Category = "Personal Care"
	CatDebtPayment   Category = "Debt Payment"
	CatSavings       Category = "Savings"
	CatOther         Category = "Other"
)

const (
	TypeDaily         SavingsType = "Daily"
	TypeWeekly        SavingsType = "Weekly"
	TypeMonthly       SavingsType = "Monthly"
	TypeYearly        SavingsType = "Yearly"
	TypeGoal          SavingsType = "Goal"
	TypeEmergencyFund SavingsType = "Emergency Fund"
	TypeInvestment    SavingsType = "Investment"
)

const (
	SavCatEmergency  SavingsCat = "Emergency Fund"
	SavCatRetirement SavingsCat = "Retirement"
	SavCatEducation  SavingsCat = "Education"
	SavCatTravel     SavingsCat = "Travel"
	SavCatHome       SavingsCat = "Home Purchase"
	SavCatCar        SavingsCat = "Car Purchase"
	SavCatWedding    SavingsCat = "Wedding"
	SavCatBusiness   SavingsCat = "Business"
	SavCatInvestment SavingsCat = "Investment"
	SavCatHealth     SavingsCat = "Health"
	SavCatOther      SavingsCat = "Other"
)

const (
	PayCash         PaymentMethod = "Cash"
	PayCreditCard   PaymentMethod = "Credit Card"
	PayDebitCard    PaymentMethod = "Debit Card"
	PayBankTransfer PaymentMethod = "Bank Transfer"
	PayMobileMoney  PaymentMethod = "Mobile Money"
	PayOther        PaymentMethod = "Other"
)

const (
	CurrencyUGX Currency = "UGX"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyKES Currency = "KES"
	CurrencyTZS Currency = "TZS"
	CurrencyRWF Currency = "RWF"
)

const (
	FreqDaily   Frequency = "Daily"
	FreqWeekly  Frequency = "Weekly"
	FreqMonthly Frequency = "Monthly"
	FreqYearly  Frequency = "Yearly"
)

const (
	SourceSalary     SavingsSource = "Salary"
	SourceBusiness   SavingsSource = "Business"
	SourceInvestment SavingsSource = "Investment"
	SourceGift       SavingsSource = "Gift"
	SourceOther      SavingsSource = "Other"
)

// DefaultCurrency applies when a record arrives without one.
const DefaultCurrency = CurrencyUGX

// Categories lists every expense category in display order.
func Categories() []Category {
	return []Category{
		CatFood, CatTransport, CatHousing, CatUtilities, CatHealthcare,
		CatEntertainment, CatShopping, CatEducation, CatTravel, CatInsurance,
		CatPersonalCare, CatDebtPayment, CatSavings, CatOther,
	}
}

// SavingsTypes lists every savings type in display order.
func SavingsTypes() []SavingsType {
	return []SavingsType{
		TypeDaily, TypeWeekly, TypeMonthly, TypeYearly,
		TypeGoal, TypeEmergencyFund, TypeInvestment,
	}
}

// SavingsCategories lists every savings category in display order.
func SavingsCategories() []SavingsCat {
	return []SavingsCat{
		SavCatEmergency, SavCatRetirement, SavCatEducation, SavCatTravel,
		SavCatHome, SavCatCar, SavCatWedding, SavCatBusiness,
		SavCatInvestment, SavCatHealth, SavCatOther,
	}
}

func (c Category) Valid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

func (t SavingsType) Valid() bool {
	for _, v := range SavingsTypes() {
		if t == v {
			return true
		}
	}
	return false
}

func (c SavingsCat) Valid() bool {
	for _, v := range SavingsCategories() {
		if c == v {
			return true
		}
	}
	return false
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PayCash, PayCreditCard, PayDebitCard, PayBankTransfer, PayMobileMoney, PayOther:
		return true
	}
	return false
}

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUGX, CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyKES, CurrencyTZS, CurrencyRWF:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqMonthly, FreqYearly:
		return true
	}
	return false
}

func (s SavingsSource) Valid() bool {
	switch s {
	case SourceSalary, SourceBusiness, SourceInvestment, SourceGift, SourceOther:
		return true
	}
	return false
}

// Receipt holds metadata about an uploaded receipt file.
type Receipt struct {
	URL        string    `json:"url,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	UploadedAt time.Time `json:"uploadedAt,omitempty"`
}

// ExpenseRecord is a single expense owned by exactly one user.
type ExpenseRecord struct {
	ID                 int64         `json:"id"`
	UserID             int64         `json:"userId"`
	Amount             float64       `json:"amount"`
	Currency           Currency      `json:"currency"`
	Category           Category      `json:"category"`
	Subcategory        string        `json:"subcategory,omitempty"`
	Description        string        `json:"description,omitempty"`
	Location           string        `json:"location,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	Date               time.Time     `json:"date"`
	PaymentMethod      PaymentMethod `json:"paymentMethod"`
	IsRecurring        bool          `json:"isRecurring"`
	RecurringFrequency Frequency     `json:"recurringFrequency,omitempty"`
	Tags               []string      `json:"tags,omitempty"`
	Receipt            *Receipt      `json:"receipt,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// Goal tracks progress toward a savings target. Progress and IsCompleted are
// derived from the record amount and TargetAmount, never set directly.
type Goal struct {
	TargetAmount float64    `json:"targetAmount"`
	TargetDate   *time.Time `json:"targetDate,omitempty"`
	IsCompleted  bool       `json:"isCompleted"`
	Progress     float64    `json:"progress"`
}

// Period is the window a savings record applies to.
type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// SavingsRecord is a single savings entry owned by exactly one user.
type SavingsRecord struct {
	ID                 int64         `json:"id"`
	UserID             int64         `json:"userId"`
	Amount             float64       `json:"amount"`
	Currency           Currency      `json:"currency"`
	Type               SavingsType   `json:"type"`
	Category           SavingsCat    `json:"category"`
	Date               time.Time     `json:"date"`
	Period             Period        `json:"period"`
	Goal               *Goal         `json:"goal,omitempty"`
	Source             SavingsSource `json:"source,omitempty"`
	IsRecurring        bool          `json:"isRecurring"`
	RecurringAmount    float64       `json:"recurringAmount,omitempty"`
	RecurringFrequency Frequency     `json:"recurringFrequency,omitempty"`
	Tags               []string      `json:"tags,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	IsActive           bool          `json:"isActive"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// User is the owning entity. The aggregation core only reads the ID as the
// scoping key plus the default currency and timezone.
type User struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	PasswordHash    string    `json:"-"`
	DefaultCurrency Currency  `json:"defaultCurrency"`
	Timezone        string    `json:"timezone"`
	CreatedAt       time.Time `json:"createdAt"`
}

const (
	maxShortText = 100
	maxLongText  = 500
	maxTagLen    = 30
	maxTags      = 10
)

// Validate checks the expense against the domain rules, collecting one message
// per failing field.
func (e *ExpenseRecord) Validate() error {
	var ve ValidationError

	if e.UserID <= 0 {
		ve.Add("userId", "owner is required")
	}
	if e.Amount < 0.01 {
		ve.Add("amount", "amount must be at least 0.01")
	}
	if !e.Currency.Valid() {
		ve.Add("currency", "unknown currency code")
	}
	if !e.Category.Valid() {
		ve.Add("category", "unknown category")
	}
	if e.Date.IsZero() {
		ve.Add("date", "date is required")
	}
	if !e.PaymentMethod.Valid() {
		ve.Add("paymentMethod", "unknown payment method")
	}
	if e.IsRecurring && !e.RecurringFrequency.Valid() {
		ve.Add("recurringFrequency", "recurring expenses require a valid frequency")
	}
	if len(e.Subcategory) > maxShortText {
		ve.Add("subcategory", "too long")
	}
	if len(e.Description) > maxLongText {
		ve.Add("description", "too long")
	}
	if len(e.Location) > maxShortText {
		ve.Add("location", "too long")
	}
	if len(e.Notes) > maxLongText {
		ve.Add("notes", "too long")
	}
	validateTags(&ve, e.Tags)

	return ve.Err()
}

// Normalize fills in defaults. Call before Validate.
func (e *ExpenseRecord) Normalize(now time.Time) {
	if e.Currency == "" {
		e.Currency = DefaultCurrency
	}
	if e.PaymentMethod == "" {
		e.PaymentMethod = PayCash
	}
	if e.Date.IsZero() {
		e.Date = now
	}
	// Timestamps are stored and compared in UTC.
	e.Date = e.Date.UTC()
	e.Subcategory = strings.TrimSpace(e.Subcategory)
	e.Description = strings.TrimSpace(e.Description)
	e.Location = strings.TrimSpace(e.Location)
	e.Notes = strings.TrimSpace(e.Notes)
}

// Validate checks the savings record against the domain rules.
func (s *SavingsRecord) Validate() error {
	var ve ValidationError

	if s.UserID <= 0 {
		ve.Add("userId", "owner is required")
	}
	if s.Amount < 0 {
		ve.Add("amount", "amount cannot be negative")
	}
	if !s.Currency.Valid() {
		ve.Add("currency", "unknown currency code")
	}
	if !s.Type.Valid() {
		ve.Add("type", "unknown savings type")
	}
	if !s.Category.Valid() {
		ve.Add("category", "unknown savings category")
	}
	if s.Date.IsZero() {
		ve.Add("date", "date is required")
	}
	if s.Period.StartDate.IsZero() {
		ve.Add("startDate", "period start date is required")
	}
	if s.Period.EndDate.IsZero() {
		ve.Add("endDate", "period end date is required")
	}
	if s.Goal != nil && s.Goal.TargetAmount < 0 {
		ve.Add("targetAmount", "target amount cannot be negative")
	}
	if s.Source != "" && !s.Source.Valid() {
		ve.Add("source", "unknown source")
	}
	if s.IsRecurring && !s.RecurringFrequency.Valid() {
		ve.Add("recurringFrequency", "recurring savings require a valid frequency")
	}
	if s.RecurringAmount < 0 {
		ve.Add("recurringAmount", "recurring amount cannot be negative")
	}
	if len(s.Notes) > maxLongText {
		ve.Add("notes", "too long")
	}
	validateTags(&ve, s.Tags)

	return ve.Err()
}

// Normalize fills in defaults and recomputes the goal invariant. It is invoked
// by the persistence path immediately before every write, so a stored record
// can never carry a progress/isCompleted pair stale relative to its amount.
func (s *SavingsRecord) Normalize(now time.Time) {
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	if s.Date.IsZero() {
		s.Date = now
	}
	// Timestamps are stored and compared in UTC.
	s.Date = s.Date.UTC()
	s.Period.StartDate = s.Period.StartDate.UTC()
	s.Period.EndDate = s.Period.EndDate.UTC()
	if s.Goal != nil && s.Goal.TargetDate != nil {
		d := s.Goal.TargetDate.UTC()
		s.Goal.TargetDate = &d
	}
	s.Notes = strings.TrimSpace(s.Notes)
	s.RecomputeGoal()
}

// RecomputeGoal re-derives goal.progress and goal.isCompleted from the current
// amount and target. Progress is clamped to [0,100]; a zero target yields zero
// progress and an incomplete goal.
func (s *SavingsRecord) RecomputeGoal() {
	if s.Goal == nil {
		return
	}
	s.Goal.Progress = GoalProgress(s.Amount, s.Goal.TargetAmount)
	s.Goal.IsCompleted = s.Goal.Progress >= 100
}

func validateTags(ve *ValidationError, tags []string) {
	if len(tags) > maxTags {
		ve.Add("tags", "too many tags")
		return
	}
	for _, t := range tags {
		if strings.TrimSpace(t) == "" || len(t) > maxTagLen {
			ve.Add("tags", "tags must be non-empty and short")
			return
		}
	}
}
