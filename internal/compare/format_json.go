package compare

import (
	"github.com/goccy/go-json"
)

// JSONFormatter writes a ComparisonSet as a single JSON object. The object
// carries base_scenario_name, base_result, alternative_results, recommendations
// and config_path. Each result holds the scenario's contribution and value
// metrics plus its *_from_base differences; computed schedules are left out.
type JSONFormatter struct {
	Pretty bool // two-space indentation
}

// Format marshals compSet; amounts are decimal strings
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	marshal := json.Marshal
	if jf.Pretty {
		marshal = func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }
	}
	data, err := marshal(compSet)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
