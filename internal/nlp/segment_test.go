package nlp

import (
	"reflect"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single clause",
			text: "Turn on the living room lights",
			want: []string{"Turn on the living room lights"},
		},
		{
			name: "and with verb splits",
			text: "add bananas to the list and remind me to buy them tomorrow",
			want: []string{"add bananas to the list", "remind me to buy them tomorrow"},
		},
		{
			name: "and without verb stays whole",
			text: "add bananas and apples to the list",
			want: []string{"add bananas and apples to the list"},
		},
		{
			name: "then splits",
			text: "create the event then remind me about it",
			want: []string{"create the event", "remind me about it"},
		},
		{
			name: "comma and splits",
			text: "turn off the kitchen lights, and set a reminder for 8pm",
			want: []string{"turn off the kitchen lights", "set a reminder for 8pm"},
		},
		{
			name: "trailing punctuation trimmed",
			text: "what's on my list?",
			want: []string{"what's on my list"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Segment(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
