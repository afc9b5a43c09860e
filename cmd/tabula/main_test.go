package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tabula"
)

const peopleSchema = `name: people
strict: true
columns:
  - name: id
    type: int
    checks:
      - kind: unique
  - name: age
    type: int
    nullable: true
    checks:
      - kind: range
        min: 0
        max: 120
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// run executes the CLI with an isolated environment and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TABULA_STORE", "none")
	t.Setenv("TABULA_SCHEMA_DIR", filepath.Join(t.TempDir(), "none"))

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_CSV(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "people.yaml", peopleSchema)

	t.Run("valid", func(t *testing.T) {
		csvPath := writeFile(t, dir, "ok.csv", "id,age\n1,30\n2,\n")
		out, err := run(t, "", "validate", "--schema", schemaPath, "--csv", csvPath)
		require.NoError(t, err)
		assert.Equal(t, "✔ PASS people (2 rows)\n", out)
	})

	t.Run("invalid", func(t *testing.T) {
		csvPath := writeFile(t, dir, "bad.csv", "id,age,extra\n1,30,x\n1,130,y\n")
		out, err := run(t, "", "validate", "--schema", schemaPath, "--csv", csvPath)
		require.ErrorIs(t, err, errInvalid)
		assert.Equal(t,
			"✘ FAIL people (2 rows, 3 errors, 0 warnings)\n"+
				"  column \"extra\": column is not declared in the schema (column_unknown)\n"+
				"  column \"id\" row 1: duplicate value 1 (unique)\n"+
				"  column \"age\" row 1: value 130 not in range [0, 120] (range)\n",
			out)
	})
}

func TestValidate_JSONStdin(t *testing.T) {
	schemaPath := writeFile(t, t.TempDir(), "people.yaml", peopleSchema)

	out, err := run(t, `[{"id":1,"age":-3}]`, "validate", "--schema", schemaPath, "--json", "-", "--format", "json")
	require.ErrorIs(t, err, errInvalid)

	var rep struct {
		Valid    bool `json:"valid"`
		Findings []struct {
			Kind string `json:"kind"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.False(t, rep.Valid)
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, "range", rep.Findings[0].Kind)
}

func TestValidate_CSVKeepsNonNumericSpellings(t *testing.T) {
	schemaPath := writeFile(t, t.TempDir(), "people.yaml", peopleSchema)

	out, err := run(t, "id,age\n01,nan\n2,inf\n", "validate", "--schema", schemaPath, "--csv", "-", "--format", "json")
	require.ErrorIs(t, err, errInvalid)

	var rep struct {
		Findings []struct {
			Column string `json:"column"`
			Kind   string `json:"kind"`
			Value  any    `json:"value"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	got := map[string]any{}
	for _, f := range rep.Findings {
		assert.Equal(t, "type_error", f.Kind)
		got[f.Column+"="+fmt.Sprint(f.Value)] = f.Value
	}
	assert.Equal(t, map[string]any{"id=01": "01", "age=nan": "nan", "age=inf": "inf"}, got)
}

func TestValidate_FailFastPrintsReport(t *testing.T) {
	schemaPath := writeFile(t, t.TempDir(), "people.yaml", peopleSchema)

	out, err := run(t, "id,age\n1,500\n", "validate", "--schema", schemaPath, "--csv", "-", "--fail-fast")
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "✘ FAIL people")
}

func TestValidate_Catalog(t *testing.T) {
	catalog := t.TempDir()
	writeFile(t, catalog, "people.yaml", peopleSchema)

	out, err := run(t, "id,age\n1,2\n", "--schema-dir", catalog, "validate", "--name", "people", "--csv", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "✔ PASS people")

	_, err = run(t, "id\n1\n", "--schema-dir", catalog, "validate", "--name", "nope", "--csv", "-")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errInvalid)
}

func TestValidate_FlagErrors(t *testing.T) {
	_, err := run(t, "", "validate", "--csv", "x.csv")
	assert.ErrorContains(t, err, "--schema or --name")

	schemaPath := writeFile(t, t.TempDir(), "people.yaml", peopleSchema)
	_, err = run(t, "", "validate", "--schema", schemaPath)
	assert.ErrorContains(t, err, "exactly one of --csv")
}

func TestSchemaLint(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", peopleSchema)
	bad := writeFile(t, dir, "bad.yaml", `name: bad
columns:
  - name: a
    type: int
    checks:
      - kind: range
        min: 10
        max: 1
`)

	out, err := run(t, "", "schema", "lint", good)
	require.NoError(t, err)
	assert.Equal(t, "✔ "+good+" (people, 2 columns, 0 table checks)\n", out)

	out, err = run(t, "", "schema", "lint", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "✘ "+bad)
	assert.Contains(t, err.Error(), bad)
}

func TestSchemaPrint(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.json",
		`{"name":"people","columns":[{"name":"id","type":"integer","checks":[{"kind":"unique"}]}]}`)

	out, err := run(t, "", "schema", "print", path)
	require.NoError(t, err)
	assert.Contains(t, out, "name: people")
	assert.Contains(t, out, "type: int")
	assert.Contains(t, out, "kind: unique")
}

func TestSchemaPrint_Mermaid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.yaml", peopleSchema)

	out, err := run(t, "", "schema", "print", "--format", "mermaid", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.Contains(t, out, "col_age[\"age: int?<br/>range [0, 120]\"]")

	_, err = run(t, "", "schema", "print", "-o", "dot", path)
	assert.ErrorContains(t, err, "unknown format")
}

func TestSchemaList(t *testing.T) {
	catalog := t.TempDir()
	writeFile(t, catalog, "people.yaml", peopleSchema)

	out, err := run(t, "", "--schema-dir", catalog, "schema", "list")
	require.NoError(t, err)
	assert.Equal(t, "people\n", out)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "tabula version "+tabula.Version+"\n", out)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "", "--log-level", "loud", "schema", "list")
	assert.Error(t, err)
}
