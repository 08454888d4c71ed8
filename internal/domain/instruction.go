package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstructionStatus represents the lifecycle status of a standing instruction
type InstructionStatus string

const (
	InstructionStatusActive   InstructionStatus = "ACTIVE"
	InstructionStatusInactive InstructionStatus = "INACTIVE"
)

// RecurrenceType determines whether an instruction is evaluated against a schedule
type RecurrenceType string

const (
	RecurrenceTypePeriodic RecurrenceType = "PERIODIC"
	RecurrenceTypeNone     RecurrenceType = "NONE"
)

// RecurrenceFrequency is the unit of a periodic schedule
type RecurrenceFrequency string

const (
	FrequencyDays   RecurrenceFrequency = "DAYS"
	FrequencyWeeks  RecurrenceFrequency = "WEEKS"
	FrequencyMonths RecurrenceFrequency = "MONTHS"
	FrequencyYears  RecurrenceFrequency = "YEARS"
)

// AccountKind represents the kind of account an instruction side refers to.
// Only savings-type deposit accounts are supported for standing instruction
// transfers; the enum exists so new kinds can be added with exhaustive switches.
type AccountKind string

const (
	AccountKindSavings AccountKind = "SAVINGS"
)

// RecurrenceSchedule defines when a periodic instruction is due.
// OnDay anchors MONTHS and YEARS schedules to a day of month; OnMonth
// additionally anchors YEARS schedules to a month of year. Both are zero
// when unset.
type RecurrenceSchedule struct {
	Frequency RecurrenceFrequency
	Interval  int
	ValidFrom time.Time // zero value means no anchor; such schedules are never due
	OnDay     int
	OnMonth   time.Month
}

// StandingInstruction is a stored recurring transfer rule between two accounts.
// It is read-only input to the batch; updates flow back through the
// InstructionRepository as explicit commands.
type StandingInstruction struct {
	ID               uuid.UUID
	Name             string
	Status           InstructionStatus
	FromAccountID    uuid.UUID
	FromAccountKind  AccountKind
	ToAccountID      uuid.UUID
	ToAccountKind    AccountKind
	Amount           decimal.Decimal
	RecurrenceType   RecurrenceType
	Recurrence       RecurrenceSchedule
	TransferTypeCode string
	LastRunDate      *time.Time
}

// IsSavingsToSavings reports whether both sides of the instruction refer to
// savings accounts, the only pairing the batch executes.
func (si *StandingInstruction) IsSavingsToSavings() bool {
	return si.FromAccountKind == AccountKindSavings && si.ToAccountKind == AccountKindSavings
}

// HasTransferableAmount reports whether the instruction carries a positive
// transfer amount. Instructions without one are never executed.
func (si *StandingInstruction) HasTransferableAmount() bool {
	return si.Amount.GreaterThan(decimal.Zero)
}
