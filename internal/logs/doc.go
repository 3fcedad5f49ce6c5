// Package logs reads back the recsort log file for the "logs" command.
//
// Tail returns the last N matching lines with the byte offset reached, and
// Follow keeps polling from that offset until the context ends. A Match
// function narrows output to one run.
package logs
