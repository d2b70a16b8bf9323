// Package cli contains Cobra commands for the msgstore binary.
//
// Every invocation opens a fresh runtime: the cache and secondary tier start
// empty and only the message log carries state between runs. A single
// `retrieve` is therefore served from the log; `exercise` drives many reads
// within one process to show the tiers at work.
//
// # Configuration
//
// Settings are layered: built-in defaults, then the JSON file named by
// --config, then MSGSTORE_* environment variables, then explicit flags.
//
// Usage
//
//	msgstore store --id 1 --sender alice --receiver bob --content "hi"
//
//	msgstore retrieve --id 1 --policy random
//
//	msgstore dump --filter 'sender == "alice" && !delivered'
//
//	msgstore exercise --messages 10 --accesses 1000 --cache-capacity 16
//
//	msgstore --backend pebble --data-dir /tmp/msgstore store --id 2 ...
package cli
