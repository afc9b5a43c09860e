/*
Package ports defines the driven ports (interfaces) of the validation engine.

These interfaces decouple validation from where schemas come from and where
reports go, so the engine works with in-memory, file, Loam or Redis backends.

# Key Interfaces

  - SchemaLoader: resolves table schemas by name (e.g., from Loam or Memory).
  - ReportStore: persists validation reports by run ID.
*/
package ports
