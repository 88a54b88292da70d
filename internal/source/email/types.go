package email

import "time"

// Envelope holds the parsed envelope data from an IMAP message.
type Envelope struct {
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	UID       uint32
}

// Message holds an envelope plus the extracted plain-text body.
type Message struct {
	Envelope Envelope
	TextBody string
}

// ImportResult summarizes one import pass over the mailbox.
type ImportResult struct {
	// MessagesSeen is how many candidate messages were inspected.
	MessagesSeen int

	// ItemsAdded is how many checklist items were created.
	ItemsAdded int

	// Errors holds per-message failures; a bad message never aborts
	// the rest of the pass.
	Errors []error
}
