package domain

import "testing"

func TestValidRating(t *testing.T) {
	tests := []struct {
		rating int
		want   bool
	}{
		{0, false},
		{1, true},
		{3, true},
		{5, true},
		{6, false},
		{-1, false},
	}

	for _, tt := range tests {
		if got := ValidRating(tt.rating); got != tt.want {
			t.Errorf("ValidRating(%d) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

func TestReviewUpdateEmpty(t *testing.T) {
	if !(ReviewUpdate{}).Empty() {
		t.Error("zero ReviewUpdate should be empty")
	}

	rating := 4
	if (ReviewUpdate{Rating: &rating}).Empty() {
		t.Error("update with rating should not be empty")
	}

	// A pointer to "" is a supplied value - it clears the comment.
	empty := ""
	if (ReviewUpdate{Comment: &empty}).Empty() {
		t.Error("update with empty-string comment should not be empty")
	}
}

func TestBookUpdateEmpty(t *testing.T) {
	if !(BookUpdate{}).Empty() {
		t.Error("zero BookUpdate should be empty")
	}
	// Whitespace-only counts as unsupplied under falsy-coalesce semantics.
	if !(BookUpdate{Title: "   "}).Empty() {
		t.Error("whitespace-only BookUpdate should be empty")
	}
	if (BookUpdate{Genre: "Sci-Fi"}).Empty() {
		t.Error("update with genre should not be empty")
	}
}
