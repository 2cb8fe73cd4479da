package reports

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rostercli/internal/errors"
	"rostercli/pkg/contracts/domain"
)

func newStudent(id, name string, marks ...[]int) *domain.Student {
	s := domain.NewStudent(id, name, "10A")
	for i, m := range marks {
		s.SetSubject(domain.DefaultSubjects[i], m)
	}
	return s
}

func roster() []*domain.Student {
	return []*domain.Student{
		newStudent("S3", "Carol", []int{90}),
		newStudent("S1", "alice", []int{80}),
		newStudent("S5", "Eve"),
		newStudent("S2", "Bob", []int{100, 80}),
		newStudent("S4", "Alice"),
	}
}

func newTestGenerator(t *testing.T, weights domain.WeightTable, collation string) *Generator {
	g, err := NewGenerator(weights, Options{Collation: collation}, nil)
	require.NoError(t, err)
	return g
}

func ids(students []*domain.Student) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.ID
	}
	return out
}

func TestRanked(t *testing.T) {
	g := newTestGenerator(t, nil, "")

	entries := g.Ranked(context.Background(), roster())
	require.Len(t, entries, 5)

	var got []string
	for i, e := range entries {
		got = append(got, e.ID)
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []string{"S2", "S3", "S1", "S4", "S5"}, got)

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1].Weighted, entries[i].Weighted
		if cur.Valid {
			require.True(t, prev.Valid)
			assert.GreaterOrEqual(t, prev.Value, cur.Value)
		}
	}
	assert.False(t, entries[3].Weighted.Valid)
	assert.Equal(t, "-", entries[4].Grade)
}

func TestRanked_UsesWeights(t *testing.T) {
	students := []*domain.Student{
		newStudent("S1", "A", []int{100}, []int{50}),
		newStudent("S2", "B", []int{60}, []int{90}),
	}

	neutral := newTestGenerator(t, nil, "").Ranked(context.Background(), students)
	assert.Equal(t, "S1", neutral[0].ID)

	science := newTestGenerator(t, domain.WeightTable{"Science": 3}, "").Ranked(context.Background(), students)
	assert.Equal(t, "S2", science[0].ID)
}

func TestRanked_DoesNotModifyInput(t *testing.T) {
	students := roster()
	before := ids(students)

	newTestGenerator(t, nil, "").Ranked(context.Background(), students)
	assert.Equal(t, before, ids(students))
}

func TestAlphabetical(t *testing.T) {
	t.Run("binary", func(t *testing.T) {
		g := newTestGenerator(t, nil, "binary")
		got := g.Alphabetical(context.Background(), roster())
		assert.Equal(t, []string{"S4", "S2", "S3", "S5", "S1"}, ids(got))
	})

	t.Run("collated", func(t *testing.T) {
		g := newTestGenerator(t, nil, "en")
		got := g.Alphabetical(context.Background(), roster())
		require.Len(t, got, 5)

		first := []string{got[0].Name, got[1].Name}
		assert.ElementsMatch(t, []string{"Alice", "alice"}, first)
		assert.Equal(t, []string{"Bob", "Carol", "Eve"}, []string{got[2].Name, got[3].Name, got[4].Name})
	})

	t.Run("equal names by id", func(t *testing.T) {
		g := newTestGenerator(t, nil, "")
		got := g.Alphabetical(context.Background(), []*domain.Student{
			newStudent("S9", "Sam"), newStudent("S1", "Sam"),
		})
		assert.Equal(t, []string{"S1", "S9"}, ids(got))
	})
}

func TestNewGenerator_InvalidCollation(t *testing.T) {
	_, err := NewGenerator(nil, Options{Collation: "!!"}, nil)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.GetErrorType(err))
}

func TestProgress(t *testing.T) {
	g := newTestGenerator(t, nil, "")
	students := []*domain.Student{
		newStudent("S1", "Alice", []int{50, 100, 50}, []int{0, 10}),
		newStudent("S2", "Bob"),
	}

	blocks := slices.Collect(g.Progress(context.Background(), students))
	require.Len(t, blocks, 2)

	first := blocks[0]
	assert.Equal(t, 210, first.Total)
	assert.InDelta(t, 105.0, first.Progress.Value, 1e-9)
	require.Len(t, first.Subjects, 2)

	math := slices.Collect(first.Subjects[0].Steps)
	assert.Equal(t, []domain.AssignmentProgress{
		{Index: 1, Mark: 50, Delta: domain.NoData},
		{Index: 2, Mark: 100, Delta: domain.Of(100)},
		{Index: 3, Mark: 50, Delta: domain.Of(-50)},
	}, math)

	science := slices.Collect(first.Subjects[1].Steps)
	assert.False(t, science[1].Delta.Valid)

	assert.Equal(t, domain.NoData, blocks[1].Progress)
	assert.Empty(t, blocks[1].Subjects)
}

func TestProgress_Lazy(t *testing.T) {
	g := newTestGenerator(t, nil, "")

	count := 0
	for block := range g.Progress(context.Background(), roster()) {
		count++
		if block.Student.ID == "S1" {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestWriteReports(t *testing.T) {
	g := newTestGenerator(t, nil, "")
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, WriteRanked(&buf, g.Ranked(ctx, roster())))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "Weighted")
	assert.Contains(t, lines[1], "90.00")
	assert.Contains(t, lines[5], "n/a")

	buf.Reset()
	require.NoError(t, WriteAlphabetical(&buf, g.Alphabetical(ctx, roster())))
	assert.Contains(t, buf.String(), "Alice")

	buf.Reset()
	require.NoError(t, WriteProgress(&buf, g.Progress(ctx, []*domain.Student{
		newStudent("S1", "Alice", []int{50, 100, 50}),
		newStudent("S2", "Bob"),
	})))
	out := buf.String()
	assert.Contains(t, out, "#1 50 (-)")
	assert.Contains(t, out, "#2 100 (+100.00%)")
	assert.Contains(t, out, "#3 50 (-50.00%)")
	assert.Contains(t, out, "progress 200.00%")
	assert.Contains(t, out, "progress n/a")

	buf.Reset()
	s := newStudent("S1", "Alice", []int{70, 80}, []int{90})
	require.NoError(t, WriteCard(&buf, s, g.Card(ctx, s)))
	assert.Contains(t, buf.String(), "70,80")
	assert.Contains(t, buf.String(), "80.00")
}
