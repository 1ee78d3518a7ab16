package model

// PlaylistEntry is a single video resolved from a playlist URL
type PlaylistEntry struct {
	ID    string
	Title string
	URL   string
}

// Playlist is the result of expanding a playlist URL
type Playlist struct {
	ID      string
	URL     string
	Title   string
	Entries []PlaylistEntry
}

// Requests builds one request per entry, copying the remaining fields from tmpl
func (p *Playlist) Requests(tmpl Request) []Request {
	reqs := make([]Request, 0, len(p.Entries))
	for _, e := range p.Entries {
		r := tmpl
		r.URL = e.URL
		reqs = append(reqs, r)
	}
	return reqs
}
