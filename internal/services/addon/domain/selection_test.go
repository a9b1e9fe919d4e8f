package domain

import "testing"

func TestParseSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attrs map[string]string
		want  Selection
		ok    bool
	}{
		{
			name: "complete attributes",
			attrs: map[string]string{
				AttrProductID: "prod-1",
				AttrVariantID: "var-1",
				AttrPrice:     "12.50",
			},
			want: Selection{ProductID: "prod-1", VariantID: "var-1", Price: "12.50"},
			ok:   true,
		},
		{
			name: "missing variant id",
			attrs: map[string]string{
				AttrProductID: "prod-1",
				AttrPrice:     "12.50",
			},
			ok: false,
		},
		{
			name: "missing product id",
			attrs: map[string]string{
				AttrVariantID: "var-1",
			},
			ok: false,
		},
		{
			name: "whitespace-only identifiers",
			attrs: map[string]string{
				AttrProductID: "  ",
				AttrVariantID: "var-1",
			},
			ok: false,
		},
		{
			name: "missing price is tolerated",
			attrs: map[string]string{
				AttrProductID: "prod-1",
				AttrVariantID: "var-1",
			},
			want: Selection{ProductID: "prod-1", VariantID: "var-1"},
			ok:   true,
		},
		{
			name: "nil map",
			ok:   false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseSelection(tc.attrs)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if got != tc.want {
				t.Fatalf("selection = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseSelectionsSkipsMalformedInOrder(t *testing.T) {
	t.Parallel()

	selections := ParseSelections([]map[string]string{
		{AttrProductID: "prod-1", AttrVariantID: "var-1", AttrPrice: "5.00"},
		{AttrProductID: "prod-2"}, // malformed, dropped
		{AttrProductID: "prod-3", AttrVariantID: "var-3"},
	})

	if len(selections) != 2 {
		t.Fatalf("expected 2 selections, got %d", len(selections))
	}
	if selections[0].VariantID != "var-1" || selections[1].VariantID != "var-3" {
		t.Fatalf("expected capture order preserved, got %+v", selections)
	}
}

func TestFormSubmissionTargetsCartAdd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action string
		want   bool
	}{
		{"/cart/add", true},
		{"https://shop.example/cart/add.js", true},
		{"/en/cart/add", true},
		{"/cart/update", false},
		{"", false},
	}
	for _, tc := range tests {
		sub := FormSubmission{Action: tc.action}
		if got := sub.TargetsCartAdd(); got != tc.want {
			t.Fatalf("TargetsCartAdd(%q) = %v, want %v", tc.action, got, tc.want)
		}
	}
}
