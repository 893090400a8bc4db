package email

// Message is a fully assembled outbound email. The template builders in this
// package produce Messages; handlers and workers never format mail directly.
type Message struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}
