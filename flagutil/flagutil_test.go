package flagutil

import (
	"reflect"
	"testing"
)

func TestParseTopicOverrides(t *testing.T) {
	cases := []struct {
		in      []string
		want    map[string]string
		wantErr bool
	}{
		{
			in:   []string{"00000000000000000000.log=orders", " a.log = b "},
			want: map[string]string{"00000000000000000000.log": "orders", "a.log": "b"},
		},
		{in: []string{"missingequals"}, wantErr: true},
		{in: []string{"=topic"}, wantErr: true},
		{in: []string{"path="}, wantErr: true},
		{in: nil, want: map[string]string{}},
	}

	for _, tc := range cases {
		got, err := ParseTopicOverrides(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTopicOverrides(%v): expected error, got none", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTopicOverrides(%v): unexpected error: %v", tc.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseTopicOverrides(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
