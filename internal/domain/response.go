package domain

// Button is one inline button: either a navigable URL or an opaque callback
// payload, never both
type Button struct {
	Text string
	URL  string
	Data string
}

// Response is the channel-neutral outbound message produced by the
// conversation engine. A per-platform adapter translates it to the wire
// format of that platform.
type Response struct {
	Text    string
	Buttons [][]Button
}

// TextResponse builds a plain response without buttons
func TextResponse(text string) *Response {
	return &Response{Text: text}
}
