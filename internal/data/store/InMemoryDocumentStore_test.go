package store

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
)

func TestDocumentStore_Lifecycle(t *testing.T) {
	s := InitInMemoryDocumentStore()

	t.Run("Put and Get", func(t *testing.T) {
		meta := map[string]string{"file_name": "doc1.txt"}
		stored, err := s.Put(commonModels.Document{Id: "doc1", Text: "The sky is blue.", Metadata: meta}, false)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if stored.IngestedAt.IsZero() {
			t.Error("IngestedAt should be stamped")
		}

		meta["file_name"] = "mutated"
		got, err := s.Get("doc1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Metadata["file_name"] != "doc1.txt" {
			t.Errorf("stored metadata aliased the caller's map: %v", got.Metadata)
		}
	})

	t.Run("Duplicate without overwrite", func(t *testing.T) {
		_, err := s.Put(commonModels.Document{Id: "doc1", Text: "other"}, false)
		if !errors.Is(err, indexErrors.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		if s.Len() != 1 {
			t.Errorf("expected exactly one document, got %d", s.Len())
		}
	})

	t.Run("Get and Delete missing", func(t *testing.T) {
		if _, err := s.Get("ghost"); !errors.Is(err, indexErrors.ErrNotFound) {
			t.Errorf("Get ghost: %v", err)
		}
		if err := s.Delete("ghost"); !errors.Is(err, indexErrors.ErrNotFound) {
			t.Errorf("Delete ghost: %v", err)
		}
	})

	t.Run("Delete twice", func(t *testing.T) {
		if err := s.Delete("doc1"); err != nil {
			t.Fatalf("first delete: %v", err)
		}
		if err := s.Delete("doc1"); !errors.Is(err, indexErrors.ErrNotFound) {
			t.Errorf("second delete should be not found, got %v", err)
		}
	})
}

func TestDocumentStore_ListOrder(t *testing.T) {
	s := InitInMemoryDocumentStore()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Put(commonModels.Document{Id: id, Text: "text " + id}, false); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Put(commonModels.Document{Id: "a", Text: "replaced"}, true); err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, summary := range s.List() {
		ids = append(ids, summary.Id)
	}
	if got := strings.Join(ids, ","); got != "b,c,a" {
		t.Errorf("order got %s, want b,c,a", got)
	}

	// restartable: a second call sees the same state
	if len(s.List()) != 3 {
		t.Error("second List call differs")
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("é", 250)
	p := Preview(long, 200)
	if len([]rune(p)) != 203 || !strings.HasSuffix(p, "...") {
		t.Errorf("preview got %d runes", len([]rune(p)))
	}
	if Preview("short", 200) != "short" {
		t.Error("short text should not be truncated")
	}
}

func TestDocumentStore_Restore(t *testing.T) {
	s := InitInMemoryDocumentStore()
	docs := []commonModels.Document{{Id: "x", Text: "1"}, {Id: "y", Text: "2"}}
	if err := s.Restore(docs); err != nil {
		t.Fatal(err)
	}
	if got := s.Documents(); len(got) != 2 || got[0].Id != "x" || got[1].Id != "y" {
		t.Errorf("restore order lost: %+v", got)
	}

	err := s.Restore([]commonModels.Document{{Id: "z"}, {Id: "z"}})
	if !errors.Is(err, indexErrors.ErrConflict) {
		t.Errorf("duplicate restore should conflict, got %v", err)
	}
	if s.Len() != 2 {
		t.Error("failed restore must leave the store untouched")
	}
}

func TestDocumentStore_Race(t *testing.T) {
	s := InitInMemoryDocumentStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			_, _ = s.Put(commonModels.Document{Id: id, Text: id}, false)
			_ = s.List()
			_ = s.Delete(id)
		}(i)
	}
	wg.Wait()
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}
