package insight

import "testing"

func TestSearch(t *testing.T) {
	recs := []Record{
		{ID: "1", Kind: KindCapture, Metadata: map[string]string{"url": "https://api.example.com/users"}},
		{ID: "2", Kind: KindDiff, Metadata: map[string]string{"left": "staging", "right": "production"}},
		{ID: "3", Kind: KindTest, Metadata: map[string]string{"url": "https://api.example.com/orders"}},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"users", []string{"1"}},
		{"prod", []string{"2"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Search(recs, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) = %d results, want %d", tt.query, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("result %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}
