package mongo

import (
	"context"
	"testing"
)

func TestGetByIDMalformedIDReadsAsNotFound(t *testing.T) {
	// A non-hex ID never reaches the collection, so a zero-value
	// repository is enough to exercise the parse path.
	repo := &SermonRepository{}

	for _, id := range []string{"abc", "not-a-hex-id", "", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		sermon, err := repo.GetByID(context.Background(), id)
		if err != nil {
			t.Errorf("GetByID(%q) returned error %v, want nil", id, err)
		}
		if sermon != nil {
			t.Errorf("GetByID(%q) returned a sermon, want nil", id)
		}
	}
}
