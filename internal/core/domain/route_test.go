package domain

import (
	"reflect"
	"testing"
)

func TestRecord_Blocks(t *testing.T) {
	rec := Record{
		ID: 7,
		Description: NewBlob(map[string]string{
			"en": "two",
			"fr": "one",
			"pt": "extra",
			"ca": "three",
			"nl": "more",
		}),
	}

	var langs []string
	for _, b := range rec.Blocks(DefaultLangOrder) {
		langs = append(langs, b.Lang)
	}

	want := []string{"fr", "en", "ca", "nl", "pt"}
	if !reflect.DeepEqual(langs, want) {
		t.Errorf("Blocks order = %v, want %v", langs, want)
	}
}

func TestRecord_BlocksNoDescription(t *testing.T) {
	rec := Record{ID: 1, Description: Blob{Kind: BlobMalformed}}
	if blocks := rec.Blocks(DefaultLangOrder); len(blocks) != 0 {
		t.Errorf("expected no blocks for malformed description, got %d", len(blocks))
	}
}

func TestBatchResult_String(t *testing.T) {
	var res BatchResult
	res.Add(RecordResult{ID: 1, Status: RecordUpdated, Rows: 1})
	res.Add(RecordResult{ID: 2, Status: RecordFailed})
	res.Add(RecordResult{ID: 3, Status: RecordSkipped})

	if res.Processed != 3 || res.Updated != 1 || res.Failed != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if res.LastID != 3 {
		t.Errorf("LastID = %d, want 3", res.LastID)
	}
	if got, want := res.String(), "processed 3 — updated 1 — failed 1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	res.DryRun = true
	res.Failed = 0
	if got, want := res.String(), "processed 3 — updated 1 (DRY-RUN)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
