package model

// Expense is a single spending record.
type Expense struct {
	ID          int64  `json:"id"`
	User        Ref    `json:"user"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	Date        Date   `json:"date"`
	Budget      Ref    `json:"budget"`
	Goal        Ref    `json:"goal"`
}

// ExpenseInput is the body for creating an expense.
type ExpenseInput struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Budget      *int64  `json:"budget,omitempty"`
	Goal        *int64  `json:"goal,omitempty"`
}

// ExpenseUpdate is a partial expense update. Nil fields are left unchanged.
type ExpenseUpdate struct {
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
}

// Message is a message-only response body, as returned for deletions and
// goal pinning.
type Message struct {
	Message string `json:"message"`
}

// Budget is a spending allowance for a category. RemainingAmount and
// UsagePercentage are nil when the server omits them.
type Budget struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Amount          Amount  `json:"amount"`
	UsedAmount      Amount  `json:"used_amount"`
	RemainingAmount *Amount `json:"remaining_amount,omitempty"`
	UsagePercentage *Amount `json:"usage_percentage,omitempty"`
	IsFamily        bool    `json:"is_family"`
	Family          Ref     `json:"family"`
}

// BudgetInput is the body for creating or updating a budget.
type BudgetInput struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Goal types.
const (
	GoalSaving   = "saving"
	GoalSpending = "spending"
)

// Goal is a saving or spending target, personal or shared with a family.
type Goal struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Amount             Amount  `json:"amount"`
	GoalType           string  `json:"goal_type"`
	IsPersonal         bool    `json:"is_personal"`
	Family             Ref     `json:"family"`
	Progress           Amount  `json:"progress"`
	ProgressPercentage *Amount `json:"progress_percentage,omitempty"`
	RemainingAmount    *Amount `json:"remaining_amount,omitempty"`
	Pinned             bool    `json:"pinned"`
	CreatedAt          Date    `json:"created_at"`
}

// GoalInput is the body for creating a goal.
type GoalInput struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	GoalType   string  `json:"goal_type"`
	IsPersonal bool    `json:"is_personal"`
	Family     *int64  `json:"family,omitempty"`
}

// GoalUpdate is a partial goal update.
type GoalUpdate struct {
	Name       *string  `json:"name,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	GoalType   *string  `json:"goal_type,omitempty"`
	IsPersonal *bool    `json:"is_personal,omitempty"`
	Family     *int64   `json:"family,omitempty"`
}

// Contribution is money put toward a goal.
type Contribution struct {
	ID     int64  `json:"id"`
	Goal   Ref    `json:"goal"`
	Amount Amount `json:"amount"`
	Date   Date   `json:"date"`
}

// ContributionInput is the body for recording a contribution.
type ContributionInput struct {
	Goal   int64   `json:"goal"`
	Amount float64 `json:"amount"`
}
