package tools

import (
	"encoding/json"
	"strconv"
	"strings"

	"shop-insights/internal/analytics"
)

// ParamsFromValues converts string key/value pairs, such as a query string or
// CLI flags, into the JSON parameters of a tool. Values that do not fit the
// declared type are passed through as strings so that decoding rejects them
// with the usual invalid_input envelope. Unknown keys are passed through too.
func (r *Registry) ParamsFromValues(name string, values map[string][]string) json.RawMessage {
	if len(values) == 0 {
		return nil
	}

	types := map[string]string{}
	if t, ok := r.tools[name]; ok {
		for _, p := range t.Parameters {
			types[p.Name] = p.Type
		}
	}

	params := make(map[string]any, len(values))
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		switch types[key] {
		case "int":
			if n, err := strconv.Atoi(strings.TrimSpace(vs[0])); err == nil {
				params[key] = n
			} else {
				params[key] = vs[0]
			}
		case "[]string":
			list := make([]string, 0, len(vs))
			for _, v := range vs {
				for _, item := range strings.Split(v, ",") {
					if item = strings.TrimSpace(item); item != "" {
						list = append(list, item)
					}
				}
			}
			params[key] = list
		default:
			params[key] = vs[0]
		}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil
	}
	return raw
}

// Capability returns the schema of a registered tool.
func (r *Registry) Capability(name string) (analytics.Capability, bool) {
	t, ok := r.tools[name]
	return t.Capability, ok
}
