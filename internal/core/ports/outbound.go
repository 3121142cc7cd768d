package ports

import (
	"context"
	"io"
)

// EmailMessage is an outbound email.
type EmailMessage struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers email synchronously.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Notifier queues email for asynchronous delivery.
type Notifier interface {
	Enqueue(msg EmailMessage)
}

// ObjectStorage stores uploaded client documents.
type ObjectStorage interface {
	// Put stores the object and returns the URL it can be fetched from.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// Renderer encodes a report document into one artifact format.
type Renderer interface {
	Render(doc ReportDocument) ([]byte, error)
	ContentType() string
	Extension() string
}
