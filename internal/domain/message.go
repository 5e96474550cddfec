package domain

// Message is an immutable value exchanged between room members. It is
// copied to every live subscriber, so it carries no references.
type Message struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}
