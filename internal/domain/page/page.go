package page

// Request identifies one fixed-size page of an external listing. It is an
// immutable value: readers derive the next page with Next instead of
// mutating cursor state between calls.
type Request struct {
	Number int
	Size   int
}

func First(size int) Request {
	return Request{Number: 0, Size: size}
}

func (r Request) Offset() int {
	return r.Number * r.Size
}

func (r Request) Next() Request {
	return Request{Number: r.Number + 1, Size: r.Size}
}
