package domain

// PageView is the visible slice of the transaction table.
type PageView struct {
	PageIndex  int
	PageSize   int
	TotalCount int
	PageCount  int
	Rows       []Transaction
}

func (p PageView) HasNext() bool {
	return p.PageIndex+1 < p.PageCount
}

func (p PageView) HasPrev() bool {
	return p.PageIndex > 0
}
