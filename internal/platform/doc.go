package platform

// Package platform contains OS/platform integration and external tooling glue:
// downloads directory discovery, partial-file cleanup, reveal in file manager,
// audio tag lookup and playlist expansion via the ytdlp library.
