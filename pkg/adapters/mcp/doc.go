// Package mcp exposes the validation engine as Model Context Protocol tools:
// list_schemas, validate_table and get_report.
package mcp
