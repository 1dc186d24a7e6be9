// Package shell turns raw input into an executable command graph.
//
// The grammar is a small subset of the shell command language described at
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
//
// 1. The input is split on ";" into chain segments, which run in order.
//
// 2. A segment ending in "&" runs in the background.
//
// 3. A segment is split on "|" into pipeline stages whose standard output
// feeds the next stage's standard input.
//
// 4. A stage is split on whitespace into words. The words "<" and ">" take
// the following word as an input or output file. Every other word is
// expanded ($NAME, $?) and becomes an argument.
//
// 5. A multi-line block of the form "if COND then BODY [else BODY] fi" runs
// COND immediately and keeps only the selected body.
//
// There is no quoting, globbing, command substitution or here-document.
package shell
