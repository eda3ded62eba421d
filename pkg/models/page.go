package models

// PageInfo is the pagination block returned alongside every list response.
type PageInfo struct {
	Count int    `json:"count"`
	Pages int    `json:"pages"`
	Next  string `json:"next,omitempty"`
	Prev  string `json:"prev,omitempty"`
}

// CharacterPage is one page of a character listing.
type CharacterPage struct {
	Info    PageInfo    `json:"info"`
	Results []Character `json:"results"`
}
