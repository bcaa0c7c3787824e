package transform

import (
	"strings"
	"testing"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformRegistry_List(t *testing.T) {
	names := NewTransformRegistry().List()
	assert.Equal(t, []string{
		"add_goal", "remove_goal", "set_allocation", "set_assumptions", "set_preset",
		"set_profile", "set_retire_age", "set_step_up", "shift_retirement", "update_goal",
	}, names)
}

func TestParseTransformSpec(t *testing.T) {
	registry := NewTransformRegistry()

	tests := []struct {
		spec     string
		wantName string
		wantErr  string
	}{
		{"set_retire_age:goal=ret,age=58", "set_retire_age", ""},
		{"shift_retirement: goal = ret , years = -2", "shift_retirement", ""},
		{"set_step_up:rate=0.07", "set_step_up", ""},
		{"set_assumptions:equity=0.11", "set_assumptions", ""},
		{"set_preset:goal=home,phase=post,preset=custom,equity=40", "set_preset", ""},
		{"set_allocation:goal=home,lumpsum=0", "set_allocation", ""},
		{"remove_goal:goal=home", "remove_goal", ""},
		{"update_goal:goal=home,item_cost_today=9000000", "update_goal", ""},
		{"set_profile:age=40,savings=3000000", "set_profile", ""},
		{"add_goal:type=custom,title=Gift,target_amount=500000,target_age=45,accumulation_start_age=35,accumulation_stop_age=45,during_preset=Safe", "add_goal", ""},
		{"set_retire_age", "", "expected 'name:params'"},
		{"set_retire_age:goal", "", "key=value"},
		{"warp_speed:x=1", "", "unknown transform"},
		{"set_retire_age:goal=ret", "", "requires 'age'"},
		{"set_retire_age:goal=ret,age=soon", "", "invalid age"},
		{"set_step_up:rate=fast", "", "invalid rate"},
		{"set_assumptions:", "", "requires 'equity' or 'debt'"},
		{"set_preset:preset=Bold", "", "invalid allocation preset"},
		{"update_goal:goal=home", "", "at least one field"},
		{"add_goal:type=wedding", "", "unknown goal type"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			tr, err := registry.ParseTransformSpec(tt.spec)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, tr.Name())
		})
	}
}

func TestParseTransformSpec_AppliesToPlan(t *testing.T) {
	registry := NewTransformRegistry()
	specs := []string{
		"set_retire_age:goal=ret,age=58",
		"add_goal:type=custom,title=Gift,target_amount=500000,target_age=45,accumulation_start_age=35,accumulation_stop_age=45,during_preset=Safe",
		"set_preset:goal=home,phase=post,preset=custom,equity=40",
	}
	var transforms []PlanTransform
	for _, s := range specs {
		tr, err := registry.ParseTransformSpec(s)
		require.NoError(t, err)
		transforms = append(transforms, tr)
	}

	result, err := ApplyTransforms(createTestPlan(), transforms)
	require.NoError(t, err)
	assert.Equal(t, 58, result.Goals[0].(*domain.RetirementGoal).RetireAge)

	require.Len(t, result.Goals, 3)
	gift, ok := result.Goals[2].(*domain.CustomGoal)
	require.True(t, ok)
	assert.Equal(t, "Gift", gift.Title)
	assert.Equal(t, 45, gift.TargetAge)
	assert.Equal(t, domain.PresetSafe, gift.DuringPreset)

	home := result.Goals[1].Common()
	assert.Equal(t, domain.PresetCustom, *home.PostPreset)
	assert.Equal(t, "40", home.CustomEquityPost.String())
}

func TestTemplateRegistry_RegisterAndGet(t *testing.T) {
	registry := NewTemplateRegistry()
	registry.Register(Template{Name: "test_template", Description: "A test template"})

	retrieved, ok := registry.Get("test_template")
	require.True(t, ok)
	assert.Equal(t, "test_template", retrieved.Name)

	_, ok = registry.Get("TEST_TEMPLATE")
	assert.True(t, ok, "lookup is case-insensitive")

	_, ok = registry.Get("nonexistent")
	assert.False(t, ok)
}

func TestCreateBuiltInTemplates(t *testing.T) {
	registry := CreateBuiltInTemplates(createTestPlan())
	for _, name := range []string{
		"retire_later_2yr", "retire_later_5yr", "retire_earlier_2yr", "retire_earlier_5yr",
		"retire_later_2yr_all_in", "step_up_10pct", "no_step_up", "all_in", "play_safe",
		"low_returns", "high_returns",
	} {
		tmpl, ok := registry.Get(name)
		require.True(t, ok, "missing template %s", name)
		assert.NotEmpty(t, tmpl.Description)
		assert.NotEmpty(t, tmpl.Transforms)
	}

	// without a retirement goal only the plan-wide templates exist
	plan := createTestPlan()
	plan.Goals = plan.Goals[1:]
	noRet := CreateBuiltInTemplates(plan)
	_, ok := noRet.Get("retire_later_2yr")
	assert.False(t, ok)
	assert.Len(t, noRet.List(), 6)
}

func TestApplyTemplate(t *testing.T) {
	registry := CreateBuiltInTemplates(createTestPlan())

	tmpl, _ := registry.Get("retire_later_2yr_all_in")
	result, err := ApplyTemplate(createTestPlan(), tmpl)
	require.NoError(t, err)
	assert.Equal(t, 62, result.Goals[0].(*domain.RetirementGoal).RetireAge)
	assert.Equal(t, domain.PresetAllIn, result.Goals[1].Common().DuringPreset)

	empty, err := ApplyTemplate(createTestPlan(), Template{Name: "noop"})
	require.NoError(t, err)
	assert.Len(t, empty.Goals, 2)

	_, err = ApplyTemplate(nil, Template{Name: "noop"})
	assert.Error(t, err)
}

func TestParseTemplateList(t *testing.T) {
	assert.Nil(t, ParseTemplateList(""))
	assert.Equal(t, []string{"all_in", "low_returns"}, ParseTemplateList(" all_in, ,low_returns "))
}

func TestGetTemplateHelp(t *testing.T) {
	help := GetTemplateHelp(CreateBuiltInTemplates(createTestPlan()))
	for _, want := range []string{"Retirement Timing:", "Contributions:", "Asset Mix:", "Market Assumptions:", "retire_later_2yr", "Usage:"} {
		assert.True(t, strings.Contains(help, want), "help should mention %s", want)
	}
	assert.Equal(t, "No templates registered", GetTemplateHelp(NewTemplateRegistry()))

	// without a retirement goal nothing mentions the retirement templates
	noPlan := GetTemplateHelp(CreateBuiltInTemplates(nil))
	assert.Contains(t, noPlan, "no_step_up")
	assert.NotContains(t, noPlan, "retire_later")
}
