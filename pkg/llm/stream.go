package llm

import "iter"

// Fragments adapts a fixed list of fragments into a stream. A non-nil err
// is yielded after the fragments.
func Fragments(chunks []string, err error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}
