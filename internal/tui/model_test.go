package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/samples"
	"github.com/rgehrsitz/capplan/internal/share"
	"github.com/rgehrsitz/capplan/internal/transform"
)

// loaded returns a model with the default plan loaded and computed
func loaded(t *testing.T) Model {
	t.Helper()
	m := NewModel("")
	msg := m.Init()()
	require.IsType(t, PlanLoadedMsg{}, msg)

	next, cmd := m.Update(msg)
	m = next.(Model)
	require.NotNil(t, cmd, "loading a plan schedules a compute")
	assert.False(t, m.loading)

	next, _ = m.Update(cmd())
	m = next.(Model)
	require.NotNil(t, m.Output())
	return m
}

func TestLoadPlan(t *testing.T) {
	t.Run("empty source is the default plan", func(t *testing.T) {
		plan, err := LoadPlan("  ")
		require.NoError(t, err)
		assert.Equal(t, "Saurabh Gandhi", plan.Profile.Name)
	})

	t.Run("sample id", func(t *testing.T) {
		plan, err := LoadPlan("family-planner")
		require.NoError(t, err)
		assert.Equal(t, "Priya Sharma", plan.Profile.Name)
	})

	t.Run("share code", func(t *testing.T) {
		code, err := share.Encode(samples.DefaultPlan())
		require.NoError(t, err)
		plan, err := LoadPlan(code)
		require.NoError(t, err)
		assert.Equal(t, "Saurabh Gandhi", plan.Profile.Name)
	})

	t.Run("plan file", func(t *testing.T) {
		s, err := samples.Get("young-professional")
		require.NoError(t, err)
		data, err := yaml.Marshal(s.Plan)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "plan.yaml")
		require.NoError(t, os.WriteFile(path, data, 0o644))

		plan, err := LoadPlan(path)
		require.NoError(t, err)
		assert.Equal(t, s.Plan.Profile.Name, plan.Profile.Name)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := LoadPlan("not-a-plan")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a plan file, sample or share code")
	})
}

func TestLoadError(t *testing.T) {
	m := NewModel("not-a-plan")
	next, _ := m.Update(m.Init()())
	m = next.(Model)
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "Error")

	// with no plan to fall back to, any key quits
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestEditPlan(t *testing.T) {
	m := loaded(t)
	before := m.Plan()
	retirement, ok := before.RetirementGoal()
	require.True(t, ok)

	next, cmd := m.Update(EditPlanMsg{
		Label:      "retire later",
		Transforms: []transform.PlanTransform{&transform.SetRetireAge{GoalID: retirement.ID, Age: 62}},
	})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, "retire later", m.status)
	assert.False(t, m.statusIsError)
	assert.Len(t, m.history, 1)

	r, _ := m.Plan().RetirementGoal()
	assert.Equal(t, 62, r.RetireAge)
	r, _ = before.RetirementGoal()
	assert.Equal(t, 60, r.RetireAge, "the previous plan is left untouched")

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.NotNil(t, m.Output())
}

func TestEditPlanRejected(t *testing.T) {
	tests := []struct {
		name      string
		transform transform.PlanTransform
	}{
		{"unknown goal", &transform.RemoveGoal{GoalID: "missing"}},
		{"allocation above savings", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loaded(t)
			tr := tt.transform
			if tr == nil {
				tr = &transform.SetAllocation{
					GoalID:  m.Plan().Goals[0].Common().ID,
					Lumpsum: m.Plan().Profile.Savings.Add(decimal.NewFromInt(1)),
				}
			}
			before := m.Plan()
			revision := m.revision

			next, cmd := m.Update(EditPlanMsg{Label: "bad", Transforms: []transform.PlanTransform{tr}})
			m = next.(Model)
			assert.Nil(t, cmd)
			assert.True(t, m.statusIsError)
			assert.Same(t, before, m.Plan())
			assert.Equal(t, revision, m.revision)
			assert.Empty(t, m.history)
		})
	}
}

func TestStaleComputeIgnored(t *testing.T) {
	m := loaded(t)
	current := m.Output()

	stale := &domain.ComputedOutput{TotalMonthlyContribution: decimal.NewFromInt(1)}
	next, _ := m.Update(ComputeCompleteMsg{Revision: m.revision - 1, Output: stale})
	m = next.(Model)
	assert.Same(t, current, m.Output())

	next, _ = m.Update(ComputeCompleteMsg{Revision: m.revision, Err: errors.New("boom")})
	m = next.(Model)
	assert.Same(t, current, m.Output())
	assert.True(t, m.statusIsError)
	assert.Contains(t, m.status, "boom")
}

func TestUndo(t *testing.T) {
	m := loaded(t)
	original := m.Plan()
	id := original.Goals[0].Common().ID

	next, _ := m.Update(EditPlanMsg{
		Label:      "lumpsum",
		Transforms: []transform.PlanTransform{&transform.SetAllocation{GoalID: id, Lumpsum: decimal.NewFromInt(500_000)}},
	})
	m = next.(Model)
	assert.Equal(t, "500000", m.Plan().LumpsumFor(id).String())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Same(t, original, m.Plan())
	assert.Empty(t, m.history)

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing to undo", m.status)
}

func TestShareCode(t *testing.T) {
	m := loaded(t)

	var copied string
	m.copyToClipboard = func(s string) error {
		copied = s
		return nil
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = next.(Model)
	require.NotEmpty(t, copied)
	assert.Contains(t, m.status, "Copied share code")

	plan, err := share.Decode(copied)
	require.NoError(t, err)
	assert.Equal(t, m.Plan().Profile.Name, plan.Profile.Name)

	m.copyToClipboard = func(string) error { return errors.New("no clipboard") }
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = next.(Model)
	assert.Equal(t, "Share code: "+copied, m.status)
}

func TestNavigation(t *testing.T) {
	m := loaded(t)

	press := func(k string) {
		t.Helper()
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		m = next.(Model)
		require.NotNil(t, cmd)
		next, _ = m.Update(cmd())
		m = next.(Model)
	}

	press("g")
	assert.Equal(t, SceneGoals, m.currentScene)
	assert.Contains(t, m.View(), "Goals")

	press("p")
	assert.Equal(t, SceneParameters, m.currentScene)
	assert.Equal(t, SceneGoals, m.previousScene)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, SceneGoals, m.currentScene)

	press("?")
	assert.Equal(t, SceneHelp, m.currentScene)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120, m.width)
}

func TestOptimizeCapturesKeys(t *testing.T) {
	m := loaded(t)
	m.currentScene = SceneOptimize

	// selecting a target opens the budget field
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.optimizeModel.Capturing())

	// esc leaves the budget field instead of the scene
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.False(t, m.optimizeModel.Capturing())
	assert.Equal(t, SceneOptimize, m.currentScene)
}

func TestCompareAndOptimizeCommands(t *testing.T) {
	m := loaded(t)

	_, cmd := m.Update(CompareRequestMsg{Templates: []string{"no_step_up"}})
	require.NotNil(t, cmd)
	msg, ok := cmd().(ComparisonCompleteMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	require.Len(t, msg.Set.AlternativeResults, 1)

	_, cmd = m.Update(OptimizeRequestMsg{Budget: decimal.NewFromInt(10_000_000)})
	require.NotNil(t, cmd)
	opt, ok := cmd().(OptimizationCompleteMsg)
	require.True(t, ok)
	require.NoError(t, opt.Err)
	assert.NotEmpty(t, opt.Result.Results)
}
