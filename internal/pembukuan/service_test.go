package pembukuan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	entries []Entry
	nextID  int64
}

func (f *fakeRepo) Insert(ctx context.Context, e Entry) (Entry, error) {
	f.nextID++
	e.ID = f.nextID
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) ([]Entry, int, error) {
	return f.entries, len(f.entries), nil
}

func validPosting() PostingInput {
	return PostingInput{
		Tanggal:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Divisi:     "motor",
		CompanyID:  1,
		Kredit:     500_000,
		Keterangan: "setoran kas",
	}
}

func TestPostAppendsEntry(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)

	entry, err := svc.Post(context.Background(), validPosting())
	require.NoError(t, err)
	require.Equal(t, int64(1), entry.ID)
	require.Equal(t, int64(500_000), entry.Kredit)
	require.Len(t, repo.entries, 1)
}

func TestPostValidation(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil)

	cases := []struct {
		name   string
		mutate func(*PostingInput)
	}{
		{"missing tanggal", func(in *PostingInput) { in.Tanggal = time.Time{} }},
		{"missing company", func(in *PostingInput) { in.CompanyID = 0 }},
		{"negative amount", func(in *PostingInput) { in.Kredit = -1 }},
		{"both zero", func(in *PostingInput) { in.Kredit = 0 }},
		{"both sides set", func(in *PostingInput) { in.Debit = 100 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validPosting()
			tc.mutate(&input)
			_, err := svc.Post(context.Background(), input)
			require.Error(t, err)
		})
	}
}
