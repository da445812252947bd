// Package commands defines the bookctl CLI, an offline companion to the
// export server.
//
// Commands
//
//   - export     Render a book JSON file as html, print, epub-json or epub
//   - validate   List every problem that blocks an export
//   - stats      Print word, page and chapter counts
//   - history    List exports recorded in the local ledger
//   - workspace  Report which Google Workspace credentials are present
//
// # Implementation
//
// The root command loads settings once before any subcommand runs. Exports
// are recorded in the SQLite ledger only when --db is given.
package commands
