// Package logging builds the slog loggers used across chara.
//
// Two output formats are supported: a human-oriented console format and JSON.
// Components obtain child loggers via NewComponentLogger so every record
// carries a component attribute.
package logging
