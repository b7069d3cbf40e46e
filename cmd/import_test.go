package cmd

import (
	"testing"
)

func TestDecodeArtists(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{
			name:  "array",
			input: `[{"id":"a","name":"A","imageUrl":"https://img/a"},{"id":"b","name":"B","imageUrl":"https://img/b"}]`,
			want:  2,
		},
		{
			name:  "wrapped",
			input: ` {"artists":[{"id":"a","name":"A","imageUrl":"https://img/a"}]}`,
			want:  1,
		},
		{
			name:  "empty wrapper",
			input: `{}`,
			want:  0,
		},
		{
			name:    "malformed",
			input:   `[{"id":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artists, err := decodeArtists([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeArtists failed: %v", err)
			}
			if len(artists) != tt.want {
				t.Errorf("expected %d artists, got %d", tt.want, len(artists))
			}
		})
	}

	artists, err := decodeArtists([]byte(`[{"id":"a","name":"A","imageUrl":"https://img/a"}]`))
	if err != nil {
		t.Fatalf("decodeArtists failed: %v", err)
	}
	if artists[0].ImageURL != "https://img/a" {
		t.Errorf("expected imageUrl to decode, got %+v", artists[0])
	}
}
