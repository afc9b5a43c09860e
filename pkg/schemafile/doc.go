// Package schemafile reads and writes table schemas as YAML or JSON
// documents:
//
//	name: people
//	strict: true
//	columns:
//	  - name: id
//	    type: int
//	    checks:
//	      - kind: unique
//	  - name: age
//	    type: int
//	    coerce: true
//	    checks:
//	      - {kind: range, min: 0, max: 120}
//	  - name: email
//	    type: string
//	    nullable: true
//	    checks:
//	      - {kind: contains, pattern: "@", severity: warning}
//	checks:
//	  - {kind: row_count, min: 1}
//
// Custom checks are referenced by name and resolved through a
// registry.Registry supplied by the caller.
package schemafile
