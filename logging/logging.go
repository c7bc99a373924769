// Package logging provides structured logging for the document
// extraction backend.
//
// The package is organized as:
//   - encoder_config.go: field-name atoms shared by all encoders
//   - file_writer.go: rotating file output (lumberjack molecule)
//   - multi_core.go: console + file tee (molecule)
//   - logger.go: the Logger organism wrapping zap
package logging
