// Package credentials loads the gateway tokens a process runs sessions for.
//
// The token list is a plain text file with one token per line. Blank lines
// are skipped; order is preserved.
package credentials
