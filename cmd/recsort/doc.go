// Command recsort sorts the output of a file-recovery tool into a browsable
// tree: one folder per extension, images grouped into year (or year/month)
// folders by capture-time events, and every folder capped at a fixed number
// of files.
//
// Subcommands:
//
//	run <src> <dest>      copy, cluster and partition a recovery dump
//	cluster <dir>         cluster an existing image folder in place
//	partition <dir>       cap the file count of every folder under dir
//	inspect <file>...     show the capture-time candidates of files
//	history [show <id>]   list past runs from the journal
//	logs [-f] [--run id]  print the end of the log file
//	config init|show|validate
package main
