// Package flagutil parses the --topic override flag: a repeatable
// "path=topic" mapping used to supply a topic name for dumps whose path
// carries no parent directory to infer one from (spec.md §4.3).
package flagutil

import (
	"fmt"

	"github.com/twmb/kdump/kv"
)

// ParseTopicOverrides parses a list of "path=topic" entries into a
// path -> topic map. Each entry has the same "key=value" shape kv.Parse
// already validates, so it does the splitting and trimming.
func ParseTopicOverrides(list []string) (map[string]string, error) {
	kvs, err := kv.Parse(list)
	if err != nil {
		return nil, fmt.Errorf("invalid --topic entry: %v", err)
	}
	overrides := make(map[string]string, len(kvs))
	for _, pair := range kvs {
		overrides[pair.K] = pair.V
	}
	return overrides, nil
}
