package mqtt

// FakeClient records connects and publishes for test assertions.
type FakeClient struct {
	// Connects contains every connect request, successful or not.
	Connects []ConnectRequest

	// Published contains every message that was accepted.
	Published []Message

	// PublishAttempts counts every Publish call, including failures.
	PublishAttempts int

	// ConnectError, if set, will be returned by Connect.
	ConnectError error

	// PublishError, if set, will be returned by every Publish.
	PublishError error

	// PublishErrors fails individual topics.
	PublishErrors map[string]error

	// Connected controls the return value of IsConnected. Connect sets it
	// on success.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeClient creates a disconnected FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{PublishErrors: make(map[string]error)}
}

// Connect records the request.
func (f *FakeClient) Connect(req ConnectRequest) error {
	f.Connects = append(f.Connects, req)
	if f.ConnectError != nil {
		f.Connected = false
		return f.ConnectError
	}
	f.Connected = true
	f.Closed = false
	return nil
}

// Publish records the message.
func (f *FakeClient) Publish(msg Message) error {
	f.PublishAttempts++
	if !f.Connected {
		return ErrNotConnected
	}
	if f.PublishError != nil {
		return f.PublishError
	}
	if err := f.PublishErrors[msg.Topic]; err != nil {
		return err
	}
	f.Published = append(f.Published, msg)
	return nil
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	f.Connected = false
	return nil
}

// Drop simulates the broker closing the connection.
func (f *FakeClient) Drop() {
	f.Connected = false
}

// PublishedTo returns the accepted messages whose topic matches.
func (f *FakeClient) PublishedTo(topic string) []Message {
	var out []Message
	for _, m := range f.Published {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// Reset clears recorded calls and scripted errors.
func (f *FakeClient) Reset() {
	f.Connects = nil
	f.Published = nil
	f.PublishAttempts = 0
	f.ConnectError = nil
	f.PublishError = nil
	f.PublishErrors = make(map[string]error)
	f.Closed = false
	f.Connected = false
}
