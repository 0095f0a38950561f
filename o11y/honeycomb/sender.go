package honeycomb

import (
	"errors"

	"github.com/honeycombio/libhoney-go/transmission"
)

// MultiSender is a transmission.Sender writing every event to each of Senders, so spans
// can go to honeycomb and the local log at once.
type MultiSender struct {
	Senders []transmission.Sender
}

func (s *MultiSender) Add(ev *transmission.Event) {
	for _, tx := range s.Senders {
		tx.Add(ev)
	}
}

func (s *MultiSender) Start() error {
	if len(s.Senders) == 0 {
		return errors.New("no senders configured")
	}
	return s.each(transmission.Sender.Start)
}

func (s *MultiSender) Stop() error {
	return s.each(transmission.Sender.Stop)
}

func (s *MultiSender) Flush() error {
	return s.each(transmission.Sender.Flush)
}

// TxResponses is the first sender's channel.
func (s *MultiSender) TxResponses() chan transmission.Response {
	return s.Senders[0].TxResponses()
}

func (s *MultiSender) SendResponse(resp transmission.Response) bool {
	full := false
	for _, tx := range s.Senders {
		if tx.SendResponse(resp) {
			full = true
		}
	}
	return full
}

// each calls f on every sender and joins the errors.
func (s *MultiSender) each(f func(transmission.Sender) error) error {
	var errs []error
	for _, tx := range s.Senders {
		if err := f(tx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
