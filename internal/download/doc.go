// Package download implements the download core on top of yt-dlp (via
// github.com/lrstanley/go-ytdlp): option mapping from a request, the Task state
// machine with cooperative cancellation and partial-file cleanup, ordered event
// relay to a listener, and a service managing several tasks with a parallel limit.
package download
