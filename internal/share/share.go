// Package share turns plans into short, URL-safe codes and back.
//
// A code is the plan in compact-key JSON, deflated and base64url encoded
// without padding.
package share

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/flate"
	"github.com/rgehrsitz/capplan/internal/config"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidCode is returned for codes that cannot be decoded into a valid plan
var ErrInvalidCode = errors.New("invalid share code")

// maxDecodedSize caps decompression of untrusted codes
const maxDecodedSize = 1 << 20

type compactPlan struct {
	P compactProfile      `json:"p"`
	G []compactGoal       `json:"g"`
	A []compactAllocation `json:"a"`
}

type compactProfile struct {
	N  string          `json:"n"`
	A  int             `json:"a"`
	S  decimal.Decimal `json:"s"`
	SU decimal.Decimal `json:"su"`
	EQ decimal.Decimal `json:"eq"`
	DB decimal.Decimal `json:"db"`
}

// compactGoal holds the shared fields plus the variant fields of every goal
// type; only the ones that belong to the goal's type are set
type compactGoal struct {
	I   string           `json:"i"`
	T   domain.GoalType  `json:"t"`
	TI  string           `json:"ti"`
	INF decimal.Decimal  `json:"inf"`
	SA  int              `json:"sa"`
	EA  int              `json:"ea"`
	DP  domain.Preset    `json:"dp"`
	PP  *domain.Preset   `json:"pp,omitempty"`
	CED *decimal.Decimal `json:"ced,omitempty"`
	CEP *decimal.Decimal `json:"cep,omitempty"`

	// retirement
	MS *decimal.Decimal `json:"ms,omitempty"`
	RA int              `json:"ra,omitempty"`
	// plan till age for retirement, purchase age for purchases
	PA int `json:"pa,omitempty"`

	// education
	SY *int             `json:"sy,omitempty"`
	DY int              `json:"dy,omitempty"`
	CY *decimal.Decimal `json:"cy,omitempty"`

	// vacation
	FHA int              `json:"fha,omitempty"`
	LHA int              `json:"lha,omitempty"`
	SPY *decimal.Decimal `json:"spy,omitempty"`

	// purchase
	IC *decimal.Decimal `json:"ic,omitempty"`

	// custom
	D    string           `json:"d,omitempty"`
	TA   *decimal.Decimal `json:"ta,omitempty"`
	TAGE int              `json:"tage,omitempty"`
}

type compactAllocation struct {
	G string          `json:"g"`
	L decimal.Decimal `json:"l"`
}

// compacter fills the variant fields of a compactGoal
type compacter struct{ cg *compactGoal }

func (c compacter) VisitRetirement(g *domain.RetirementGoal) error {
	c.cg.MS, c.cg.RA, c.cg.PA = &g.MonthlySpendToday, g.RetireAge, g.PlanTillAge
	return nil
}

func (c compacter) VisitEducation(g *domain.EducationGoal) error {
	c.cg.SY, c.cg.DY, c.cg.CY = &g.StartInYears, g.DurationYears, &g.CostPerYearToday
	return nil
}

func (c compacter) VisitVacation(g *domain.VacationGoal) error {
	c.cg.FHA, c.cg.LHA, c.cg.SPY = g.FirstHolidayAge, g.LastHolidayAge, &g.SpendPerYearToday
	return nil
}

func (c compacter) VisitPurchase(g *domain.PurchaseGoal) error {
	c.cg.PA, c.cg.IC = g.PurchaseAge, &g.ItemCostToday
	return nil
}

func (c compacter) VisitCustom(g *domain.CustomGoal) error {
	c.cg.D, c.cg.TA, c.cg.TAGE = g.Description, &g.TargetAmount, g.TargetAge
	return nil
}

// restorer copies the variant fields back out of a compactGoal
type restorer struct{ cg *compactGoal }

func (r restorer) VisitRetirement(g *domain.RetirementGoal) error {
	g.MonthlySpendToday, g.RetireAge, g.PlanTillAge = deref(r.cg.MS), r.cg.RA, r.cg.PA
	return nil
}

func (r restorer) VisitEducation(g *domain.EducationGoal) error {
	if r.cg.SY != nil {
		g.StartInYears = *r.cg.SY
	}
	g.DurationYears, g.CostPerYearToday = r.cg.DY, deref(r.cg.CY)
	return nil
}

func (r restorer) VisitVacation(g *domain.VacationGoal) error {
	g.FirstHolidayAge, g.LastHolidayAge, g.SpendPerYearToday = r.cg.FHA, r.cg.LHA, deref(r.cg.SPY)
	return nil
}

func (r restorer) VisitPurchase(g *domain.PurchaseGoal) error {
	g.PurchaseAge, g.ItemCostToday = r.cg.PA, deref(r.cg.IC)
	return nil
}

func (r restorer) VisitCustom(g *domain.CustomGoal) error {
	g.Description, g.TargetAmount, g.TargetAge = r.cg.D, deref(r.cg.TA), r.cg.TAGE
	return nil
}

func deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func compact(plan *domain.Plan) (*compactPlan, error) {
	p := plan.Profile
	cp := &compactPlan{
		P: compactProfile{N: p.Name, A: p.Age, S: p.Savings, SU: p.StepUp.AnnualRate, EQ: p.Assumptions.EquityAnnual, DB: p.Assumptions.DebtAnnual},
		G: make([]compactGoal, 0, len(plan.Goals)),
		A: make([]compactAllocation, 0, len(plan.Allocations)),
	}
	for _, g := range plan.Goals {
		b := g.Common()
		cg := compactGoal{
			I: b.ID, T: g.Kind(), TI: b.Title, INF: b.Inflation,
			SA: b.AccumulationStartAge, EA: b.AccumulationStopAge, DP: b.DuringPreset,
			PP: b.PostPreset, CED: b.CustomEquityDuring, CEP: b.CustomEquityPost,
		}
		if err := g.Accept(compacter{&cg}); err != nil {
			return nil, err
		}
		cp.G = append(cp.G, cg)
	}
	for _, a := range plan.Allocations {
		cp.A = append(cp.A, compactAllocation{G: a.GoalID, L: a.Lumpsum})
	}
	return cp, nil
}

func restore(cp *compactPlan) (*domain.Plan, error) {
	plan := &domain.Plan{
		Profile: domain.Profile{
			Name:        cp.P.N,
			Age:         cp.P.A,
			Savings:     cp.P.S,
			StepUp:      domain.StepUp{AnnualRate: cp.P.SU},
			Assumptions: domain.Assumptions{EquityAnnual: cp.P.EQ, DebtAnnual: cp.P.DB},
		},
		Goals: make(domain.Goals, 0, len(cp.G)),
	}
	for i := range cp.G {
		cg := &cp.G[i]
		g, err := domain.NewGoal(cg.T)
		if err != nil {
			return nil, err
		}
		*g.Common() = domain.GoalBase{
			Type: cg.T, ID: cg.I, Title: cg.TI, Inflation: cg.INF,
			AccumulationStartAge: cg.SA, AccumulationStopAge: cg.EA, DuringPreset: cg.DP,
			PostPreset: cg.PP, CustomEquityDuring: cg.CED, CustomEquityPost: cg.CEP,
		}
		if err := g.Accept(restorer{cg}); err != nil {
			return nil, err
		}
		plan.Goals = append(plan.Goals, g)
	}
	for _, a := range cp.A {
		plan.Allocations = append(plan.Allocations, domain.Allocation{GoalID: a.G, Lumpsum: a.L})
	}
	return plan, nil
}

// Encode returns the share code for a plan
func Encode(plan *domain.Plan) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("plan cannot be nil")
	}
	cp, err := compact(plan)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("failed to compress plan: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to compress plan: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode restores and validates the plan behind a share code. Padded or
// standard base64 is accepted as well.
func Decode(code string) (*domain.Plan, error) {
	code = strings.TrimRight(strings.TrimSpace(code), "=")
	code = strings.NewReplacer("+", "-", "/", "_").Replace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", ErrInvalidCode)
	}

	raw, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	data, err := io.ReadAll(io.LimitReader(r, maxDecodedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	if len(data) > maxDecodedSize {
		return nil, fmt.Errorf("%w: decoded plan too large", ErrInvalidCode)
	}

	var cp compactPlan
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	plan, err := restore(&cp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	if err := config.NewInputParser().ValidatePlan(plan); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}
	return plan, nil
}

// ShortID returns a 10 character base36 identifier derived from the plan's
// contents. Equal plans get equal ids.
func ShortID(plan *domain.Plan) (string, error) {
	cp, err := compact(plan)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return "", err
	}
	h := fnv.New64a()
	h.Write(data)
	id := strconv.FormatUint(h.Sum64(), 36)
	if len(id) > 10 {
		return id[:10], nil
	}
	return id + strings.Repeat("0", 10-len(id)), nil
}

// IsShortID reports whether s looks like a ShortID rather than a share code
func IsShortID(s string) bool {
	if len(s) == 0 || len(s) > 10 {
		return false
	}
	for _, c := range strings.ToLower(s) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
