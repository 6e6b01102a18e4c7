package dispatch

// Word is one element of a shell argument list: a text value plus an
// optional metadata slot the glob layer above this module uses to
// remember how the word was formed (quoted, a glob pattern, etc.).
// Meta is opaque here; dispatch never inspects it.
type Word struct {
	Text string
	Meta any
}

// List is a parsed argument list, the List type spec.md's data model
// describes: a sequence of words that the dispatcher materializes into
// a contiguous argv before execution.
type List []Word

// Argv materializes the list into a contiguous []string, the
// equivalent of the C original's NULL-terminated argv array (Go's
// exec family wants a slice, not a sentinel-terminated array, so the
// NULL terminator itself has no analogue here). If dashPrefix is true,
// a leading "-" is prepended as argv[0] and every word, the first one
// included, follows it.
func (l List) Argv(dashPrefix bool) []string {
	av := make([]string, 0, len(l)+1)
	if dashPrefix {
		av = append(av, "-")
		for _, w := range l {
			av = append(av, w.Text)
		}
		return av
	}
	for _, w := range l {
		av = append(av, w.Text)
	}
	return av
}

// NewList builds a List from plain strings, for callers (tests, -c
// command lines) that have no glob metadata to attach.
func NewList(words ...string) List {
	l := make(List, len(words))
	for i, w := range words {
		l[i] = Word{Text: w}
	}
	return l
}
