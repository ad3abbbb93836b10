package policy

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dealerlink/backend/internal/domain/network"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PeriodType represents the tracking window used for grade accounting
type PeriodType string

const (
	PeriodTypeDaily     PeriodType = "DAILY"
	PeriodTypeWeekly    PeriodType = "WEEKLY"
	PeriodTypeMonthly   PeriodType = "MONTHLY"
	PeriodTypeQuarterly PeriodType = "QUARTERLY"
)

// IsValid checks if the period type is valid
func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodTypeDaily, PeriodTypeWeekly, PeriodTypeMonthly, PeriodTypeQuarterly:
		return true
	}
	return false
}

// String returns the string representation of PeriodType
func (p PeriodType) String() string {
	return string(p)
}

// WindowAt returns the half-open period window [start, end) containing t.
// A settlement at exactly the period end belongs to the next window.
func (p PeriodType) WindowAt(t time.Time) (start, end time.Time) {
	loc := t.Location()
	switch p {
	case PeriodTypeDaily:
		start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		end = start.AddDate(0, 0, 1)
	case PeriodTypeWeekly:
		// Weeks start on Monday
		offset := (int(t.Weekday()) + 6) % 7
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		start = day.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 7)
	case PeriodTypeQuarterly:
		quarterStart := time.Month(((int(t.Month())-1)/3)*3 + 1)
		start = time.Date(t.Year(), quarterStart, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 3, 0)
	default: // monthly
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	}
	return start, end
}

// Contains reports whether t falls inside the window [start, end)
func Contains(start, end, t time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// GradeThreshold is one rung of the bonus ladder: reaching MinOrders within
// the tracking period unlocks BonusPerOrder for every order in the period.
type GradeThreshold struct {
	MinOrders     int             `json:"min_orders"`
	BonusPerOrder decimal.Decimal `json:"bonus_per_order"`
}

// GradeLadder is an ascending list of thresholds, stored as JSONB
type GradeLadder []GradeThreshold

// Value implements driver.Valuer for JSONB storage
func (l GradeLadder) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB retrieval
func (l *GradeLadder) Scan(value interface{}) error {
	if value == nil {
		*l = GradeLadder{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan GradeLadder: unsupported type")
	}
	if len(bytes) == 0 {
		*l = GradeLadder{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Validate checks that the ladder is strictly ascending in MinOrders with
// non-negative bonuses
func (l GradeLadder) Validate() error {
	prev := 0
	for i, th := range l {
		if th.MinOrders <= prev {
			return shared.NewDomainError("INVALID_GRADE_LADDER",
				fmt.Sprintf("Ladder thresholds must be strictly ascending (position %d)", i))
		}
		if th.BonusPerOrder.IsNegative() {
			return shared.NewDomainError("INVALID_GRADE_LADDER",
				fmt.Sprintf("Bonus per order cannot be negative (position %d)", i))
		}
		prev = th.MinOrders
	}
	return nil
}

// LevelFor returns the highest 1-based level whose MinOrders <= count,
// or 0 when no threshold has been reached
func (l GradeLadder) LevelFor(count int) int {
	level := 0
	for i, th := range l {
		if count >= th.MinOrders {
			level = i + 1
		}
	}
	return level
}

// ThresholdAt returns the threshold for a 1-based level
func (l GradeLadder) ThresholdAt(level int) (GradeThreshold, bool) {
	if level < 1 || level > len(l) {
		return GradeThreshold{}, false
	}
	return l[level-1], true
}

// NextTarget returns the MinOrders of the next unreached threshold, or 0 when
// the top of the ladder has been reached
func (l GradeLadder) NextTarget(count int) int {
	for _, th := range l {
		if count < th.MinOrders {
			return th.MinOrders
		}
	}
	return 0
}

// TierDefaults maps a company tier to its static default commission, the
// final fallback of the rate precedence chain. Stored as JSONB.
type TierDefaults map[network.CompanyType]decimal.Decimal

// Value implements driver.Valuer for JSONB storage
func (d TierDefaults) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB retrieval
func (d *TierDefaults) Scan(value interface{}) error {
	if value == nil {
		*d = TierDefaults{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan TierDefaults: unsupported type")
	}
	if len(bytes) == 0 {
		*d = TierDefaults{}
		return nil
	}
	return json.Unmarshal(bytes, d)
}

// Policy is carrier commission configuration, owned by the surrounding
// platform and mirrored here read-only.
type Policy struct {
	shared.BaseEntity
	Code              string       `json:"code"`
	Name              string       `json:"name"`
	Carrier           string       `json:"carrier"`
	TierDefaults      TierDefaults `json:"tier_defaults"`
	PlanBuckets       PlanBuckets  `json:"plan_buckets"`
	GradeLadder       GradeLadder  `json:"grade_ladder"`
	TrackingPeriod    PeriodType   `json:"tracking_period"`
	PaymentOffsetDays int          `json:"payment_offset_days"`
	Active            bool         `json:"active"`
}

// NewPolicy creates a mirrored policy row
func NewPolicy(code, name, carrier string, tierDefaults TierDefaults, buckets PlanBuckets,
	ladder GradeLadder, trackingPeriod PeriodType, paymentOffsetDays int) (*Policy, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_POLICY_CODE", "Policy code cannot be empty")
	}
	if carrier == "" {
		return nil, shared.NewDomainError("INVALID_CARRIER", "Policy carrier cannot be empty")
	}
	if !trackingPeriod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD_TYPE", "Tracking period type is not valid")
	}
	if paymentOffsetDays < 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_OFFSET", "Payment offset days cannot be negative")
	}
	if err := ladder.Validate(); err != nil {
		return nil, err
	}
	if err := buckets.Validate(); err != nil {
		return nil, err
	}

	return &Policy{
		BaseEntity:        shared.NewBaseEntity(),
		Code:              code,
		Name:              name,
		Carrier:           carrier,
		TierDefaults:      tierDefaults,
		PlanBuckets:       buckets,
		GradeLadder:       ladder,
		TrackingPeriod:    trackingPeriod,
		PaymentOffsetDays: paymentOffsetDays,
		Active:            true,
	}, nil
}

// TierDefault returns the static default commission for a company tier
func (p *Policy) TierDefault(tier network.CompanyType) (decimal.Decimal, bool) {
	amount, ok := p.TierDefaults[tier]
	return amount, ok
}

// BucketFor maps a plan amount onto the policy's bucket ladder, falling back
// to DefaultPlanBuckets when the policy carries none
func (p *Policy) BucketFor(planAmount decimal.Decimal) int64 {
	buckets := p.PlanBuckets
	if len(buckets) == 0 {
		buckets = DefaultPlanBuckets
	}
	return buckets.BucketFor(planAmount)
}
