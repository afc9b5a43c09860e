package schema

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/report"
)

func ageSchema(t *testing.T) *Table {
	t.Helper()
	s, err := NewTable("people").
		Column(NewColumn("age", Int()).Check(InRange(0, 120))).
		Build()
	require.NoError(t, err)
	return s
}

func TestTable_AgeScenario(t *testing.T) {
	tbl := frame.MustNew(frame.Series{Name: "age", Values: []any{25, -1, nil, 130}})

	rep := ageSchema(t).Validate(tbl)

	require.False(t, rep.IsValid())
	fs := rep.Findings()
	require.Len(t, fs, 3)

	assert.Equal(t, "age", fs[0].Column)
	assert.Equal(t, 1, fs[0].Row)
	assert.Equal(t, report.KindRange, fs[0].Kind)
	assert.Equal(t, -1, fs[0].Value)

	assert.Equal(t, 2, fs[1].Row)
	assert.Equal(t, report.KindNullability, fs[1].Kind)

	assert.Equal(t, 3, fs[2].Row)
	assert.Equal(t, report.KindRange, fs[2].Kind)
	assert.Equal(t, "value 130 not in range [0, 120]", fs[2].Message)
}

func TestTable_AllValid(t *testing.T) {
	tbl := frame.MustNew(frame.Series{Name: "age", Values: []any{0, 18, 120}})

	rep := ageSchema(t).Validate(tbl)

	assert.True(t, rep.IsValid())
	assert.Empty(t, rep.Findings())
	assert.Equal(t, 3, rep.Rows())
}

func TestTable_EmptyTable(t *testing.T) {
	tbl := frame.MustNew(frame.Series{Name: "age", Values: []any{}})

	rep := ageSchema(t).Validate(tbl)
	assert.True(t, rep.IsValid())
}

func TestTable_StrictRejectsUnknownColumns(t *testing.T) {
	s := NewTable("people").
		Strict().
		Column(NewColumn("age", Int())).
		MustBuild()
	tbl := frame.MustNew(
		frame.Series{Name: "age", Values: []any{30}},
		frame.Series{Name: "extra", Values: []any{"x"}},
	)

	rep := s.Validate(tbl)

	fs := rep.Findings()
	require.Len(t, fs, 1)
	assert.Equal(t, "extra", fs[0].Column)
	assert.Equal(t, report.NoRow, fs[0].Row)
	assert.Equal(t, report.KindColumnUnknown, fs[0].Kind)
}

func TestTable_NonStrictIgnoresUnknownColumns(t *testing.T) {
	tbl := frame.MustNew(
		frame.Series{Name: "age", Values: []any{30}},
		frame.Series{Name: "extra", Values: []any{"x"}},
	)

	assert.True(t, ageSchema(t).Validate(tbl).IsValid())
}

func TestTable_MissingRequiredColumn(t *testing.T) {
	s := NewTable("people").
		Column(
			NewColumn("id", Int()),
			NewColumn("age", Int()).Check(InRange(0, 120)),
			NewColumn("nickname", String()).Optional(),
		).
		MustBuild()
	tbl := frame.MustNew(frame.Series{Name: "id", Values: []any{1, 2, 3}})

	fs := s.Validate(tbl).Findings()

	require.Len(t, fs, 1)
	assert.Equal(t, report.Finding{
		Column:   "age",
		Row:      report.NoRow,
		Kind:     report.KindColumnMissing,
		Message:  "required column is missing",
		Severity: report.SeverityError,
	}, fs[0])
}

func TestTable_NoShortCircuitAcrossChecks(t *testing.T) {
	s := NewTable("codes").
		Column(NewColumn("code", String()).Check(Matches(`[a-z]+`), StrLength(1, 3))).
		MustBuild()
	tbl := frame.MustNew(frame.Series{Name: "code", Values: []any{"ABCDE"}})

	fs := s.Validate(tbl).Findings()

	require.Len(t, fs, 2)
	assert.Equal(t, report.KindRegex, fs[0].Kind)
	assert.Equal(t, report.KindStrLength, fs[1].Kind)
}

func TestTable_TypeErrorShortCircuitsValue(t *testing.T) {
	s := NewTable("t").
		Column(NewColumn("n", Int()).Check(InRange(0, 10), Unique())).
		MustBuild()
	tbl := frame.MustNew(frame.Series{Name: "n", Values: []any{"x", 5, "x"}})

	fs := s.Validate(tbl).Findings()

	require.Len(t, fs, 2)
	for i, row := range []int{0, 2} {
		assert.Equal(t, row, fs[i].Row)
		assert.Equal(t, report.KindTypeError, fs[i].Kind)
		assert.Equal(t, "x", fs[i].Value)
	}
}

func TestTable_NullableColumn(t *testing.T) {
	s := NewTable("t").
		Column(NewColumn("email", String()).Nullable().Check(Contains(`@`))).
		MustBuild()
	tbl := frame.MustNew(frame.Series{Name: "email", Values: []any{nil, "a@b", "nope"}})

	fs := s.Validate(tbl).Findings()

	require.Len(t, fs, 1)
	assert.Equal(t, 2, fs[0].Row)
	assert.Equal(t, report.KindRegex, fs[0].Kind)
}

func TestTable_UniqueReportsLaterOccurrences(t *testing.T) {
	s := NewTable("t").
		Column(NewColumn("id", Int()).Check(Unique(), GreaterThan(0))).
		MustBuild()
	tbl := frame.MustNew(frame.Series{Name: "id", Values: []any{1, 2, 1, -2, -2}})

	fs := s.Validate(tbl).Findings()

	got := make([]string, len(fs))
	for i, f := range fs {
		got[i] = fmt.Sprintf("%d:%s", f.Row, f.Kind)
	}
	assert.Equal(t, []string{"2:unique", "3:range", "4:unique", "4:range"}, got)
}

func TestTable_Coercion(t *testing.T) {
	s := NewTable("t").
		Column(
			NewColumn("n", Int()).Coerce().Check(InRange(0, 10)),
			NewColumn("m", Int()).Check(InRange(0, 10)),
		).
		Check(RowPredicate("n_le_m", []string{"n", "m"}, func(row map[string]any) bool {
			return row["n"].(int64) <= int64(row["m"].(int))
		})).
		MustBuild()
	tbl := frame.MustNew(
		frame.Series{Name: "n", Values: []any{"5", "50", "five", "9"}},
		frame.Series{Name: "m", Values: []any{6, 7, 8, 1}},
	)

	fs := s.Validate(tbl).Findings()

	require.Len(t, fs, 4)
	assert.Equal(t, report.KindRange, fs[0].Kind)
	assert.Equal(t, int64(50), fs[0].Value)
	assert.Equal(t, report.KindTypeError, fs[1].Kind)
	assert.Equal(t, 2, fs[1].Row)
	assert.Equal(t, report.KindTableCustom, fs[2].Kind)
	assert.Equal(t, 1, fs[2].Row)
	assert.Equal(t, report.KindTableCustom, fs[3].Kind)
	assert.Equal(t, 3, fs[3].Row)
	assert.Empty(t, fs[3].Column)
}

func TestTable_TableChecksSkipTypeFailedRows(t *testing.T) {
	s := NewTable("spans").
		Column(NewColumn("start", Int()), NewColumn("end", Int())).
		Check(RowPredicate("start_before_end", []string{"start", "end"}, func(row map[string]any) bool {
			return row["start"].(int) < row["end"].(int)
		})).
		MustBuild()
	tbl := frame.MustNew(
		frame.Series{Name: "start", Values: []any{1, "x", 5}},
		frame.Series{Name: "end", Values: []any{2, 3, 4}},
	)

	fs := s.Validate(tbl).Findings()

	require.Len(t, fs, 2)
	assert.Equal(t, report.KindTypeError, fs[0].Kind)
	assert.Equal(t, "start", fs[0].Column)
	assert.Equal(t, report.KindTableCustom, fs[1].Kind)
	assert.Equal(t, 2, fs[1].Row)
	assert.Equal(t, map[string]any{"start": 5, "end": 4}, fs[1].Value)
}

func TestTable_TableCheckSkippedWhenColumnAbsent(t *testing.T) {
	s := NewTable("t").
		Column(NewColumn("a", Int()), NewColumn("b", Int()).Optional()).
		Check(UniqueTogether([]string{"a", "b"})).
		MustBuild()
	tbl := frame.MustNew(frame.Series{Name: "a", Values: []any{1, 1}})

	assert.True(t, s.Validate(tbl).IsValid())
}

func TestTable_RowCountFinding(t *testing.T) {
	s := NewTable("t").
		Column(NewColumn("a", Int())).
		Check(RowCount(5, Unbounded)).
		MustBuild()
	tbl := frame.MustNew(frame.Series{Name: "a", Values: []any{1, 2}})

	fs := s.Validate(tbl).Findings()

	require.Len(t, fs, 1)
	assert.Equal(t, report.KindRowCount, fs[0].Kind)
	assert.Equal(t, report.NoRow, fs[0].Row)
	assert.Equal(t, 2, fs[0].Value)
	assert.Equal(t, "table has 2 rows, want row count >= 5", fs[0].Message)
}

func TestTable_Warnings(t *testing.T) {
	s := NewTable("t").
		Column(NewColumn("score", Float()).Check(LessOrEqual(1.0, AsWarning()))).
		MustBuild()
	tbl := frame.MustNew(frame.Series{Name: "score", Values: []any{0.5, 1.5}})

	rep := s.Validate(tbl)

	assert.True(t, rep.IsValid())
	assert.Equal(t, 1, rep.WarningCount())
}

func TestTable_FindingOrder(t *testing.T) {
	s := NewTable("t").
		Strict().
		Column(
			NewColumn("b", Int()).Check(GreaterThan(0)),
			NewColumn("a", Int()).Check(GreaterThan(0)),
			NewColumn("c", Int()),
		).
		Check(RowCount(10, Unbounded)).
		MustBuild()
	tbl := frame.MustNew(
		frame.Series{Name: "a", Values: []any{-1, -2}},
		frame.Series{Name: "b", Values: []any{-1, 1}},
		frame.Series{Name: "z", Values: []any{0, 0}},
	)

	fs := s.Validate(tbl).Findings()

	got := make([]string, len(fs))
	for i, f := range fs {
		got[i] = fmt.Sprintf("%s/%d/%s", f.Column, f.Row, f.Kind)
	}
	assert.Equal(t, []string{
		"c/-1/column_missing",
		"z/-1/column_unknown",
		"b/0/range",
		"a/0/range",
		"a/1/range",
		"/-1/table_row_count",
	}, got)
}

func wideFixture() (*Table, frame.Table) {
	b := NewTable("wide")
	var series []frame.Series
	for c := 0; c < 12; c++ {
		name := fmt.Sprintf("c%02d", c)
		b.Column(NewColumn(name, Int()).Nullable().Check(InRange(0, 50), Unique()))
		vals := make([]any, 40)
		for r := range vals {
			switch {
			case (r+c)%7 == 0:
				vals[r] = nil
			case (r*c)%5 == 0:
				vals[r] = "bad"
			default:
				vals[r] = (r * c) % 60
			}
		}
		series = append(series, frame.Series{Name: name, Values: vals})
	}
	b.Check(UniqueTogether([]string{"c01", "c02"}))
	return b.MustBuild(), frame.MustNew(series...)
}

func TestTable_ParallelMatchesSequential(t *testing.T) {
	s, tbl := wideFixture()

	seq := s.Validate(tbl)
	require.NotZero(t, seq.Len())

	for _, n := range []int{2, 4, 16} {
		par := s.Validate(tbl, WithParallelism(n))
		assert.Equal(t, seq.Findings(), par.Findings(), "parallelism %d", n)
	}
}

func TestTable_Idempotent(t *testing.T) {
	s, tbl := wideFixture()

	first, err := json.Marshal(s.Validate(tbl))
	require.NoError(t, err)
	second, err := json.Marshal(s.Validate(tbl))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestTableBuilder_DefinitionErrors(t *testing.T) {
	_, err := NewTable("broken").
		Column(
			NewColumn("a", Int()).Check(InRange(10, 0)),
			NewColumn("b", Int()),
			NewColumn("b", String()),
			NewColumn("", Int()),
			NewColumn("c", nil),
		).
		Check(UniqueTogether([]string{"b", "missing"})).
		Build()

	require.Error(t, err)
	des := DefinitionErrors(err)
	require.Len(t, des, 5)
	assert.Equal(t, "a", des[0].Column)
	assert.Equal(t, "b", des[1].Column)
	assert.Equal(t, "duplicate column name", des[1].Reason)
	assert.Contains(t, des[4].Reason, `"missing"`)
}

func TestTableBuilder_MustBuildPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewTable("t").Column(NewColumn("a", Int()).Check(IsIn(nil))).MustBuild()
	})
}

func TestColumn_ValidateDirect(t *testing.T) {
	col := NewColumn("age", Int()).Check(InRange(0, 120)).MustBuild()

	fs := col.Validate([]any{25, -1, nil, 130}, nil)

	require.Len(t, fs, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{fs[0].Row, fs[1].Row, fs[2].Row})
}
