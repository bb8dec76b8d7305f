// Package logging sets up structured slog logging for synmap.
//
// By default logs go to stderr at warn level and above so command output
// stays clean. With --debug (or logging.file in .synmap.yaml) JSON logs are
// written to a size-rotated file, ~/.synmap/logs/synmap.log unless
// configured otherwise, and can be read back with `synmap logs`.
package logging
