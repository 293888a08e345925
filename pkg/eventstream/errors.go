package eventstream

import "errors"

var (
	// ErrNilEvent indicates a nil envelope was provided to a publisher.
	ErrNilEvent = errors.New("nil event")

	// ErrNoTopics indicates a subscription with no topics.
	ErrNoTopics = errors.New("no topics to subscribe to")
)
