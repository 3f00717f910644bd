package domain

const DefaultPageSize = 12

// Page is one server page of artworks. It is superseded entirely by the next
// fetch and never merged with earlier pages.
type Page struct {
	Index   int
	Records []Artwork
	Total   int
	Size    int
}

func (p Page) PageCount() int {
	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	if p.Total <= 0 {
		return 0
	}

	return (p.Total + size - 1) / size
}

// FirstRow and LastRow are 1-based row numbers for "Showing {first} to {last}".
func (p Page) FirstRow() int {
	if len(p.Records) == 0 {
		return 0
	}

	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}

	return p.Index*size + 1
}

func (p Page) LastRow() int {
	if len(p.Records) == 0 {
		return 0
	}

	return p.FirstRow() + len(p.Records) - 1
}

func (p Page) IDs() []ArtworkID {
	ids := make([]ArtworkID, 0, len(p.Records))
	for _, record := range p.Records {
		ids = append(ids, record.ID)
	}
	return ids
}
