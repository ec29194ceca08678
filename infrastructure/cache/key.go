package cache

import (
	"encoding/json"
	"fmt"

	"github.com/google/go-querystring/query"
)

// GenerateKey derives "prefix:{json}" from params. encoding/json writes map keys in
// sorted order, so the key does not depend on how params was built.
func GenerateKey(prefix string, params map[string]any) string {
	if params == nil {
		params = map[string]any{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		// only reachable with unencodable values; fall back to the formatted map, which is also sorted
		return fmt.Sprintf("%s:%v", prefix, params)
	}
	return prefix + ":" + string(raw)
}

// ParamsFromStruct flattens a request struct into cache key params using its `url` tags
func ParamsFromStruct(v any) (map[string]any, error) {
	values, err := query.Values(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache params: %w", err)
	}
	params := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			params[k] = vs[0]
			continue
		}
		params[k] = vs
	}
	return params, nil
}
