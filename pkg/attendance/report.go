package attendance

import (
	"errors"

	"attendance/pkg/locationstore"
)

type ErrorKind string

const (
	KindInvalidData   ErrorKind = "invalid_data"
	KindDuplicateName ErrorKind = "duplicate_name"
	KindNotFound      ErrorKind = "not_found"
	KindNetwork       ErrorKind = "network"
	KindParse         ErrorKind = "parse"
	KindDelivery      ErrorKind = "delivery"
	KindUnknown       ErrorKind = "unknown"
)

// Report is one failure handed to a Reporter.
type Report struct {
	Kind    ErrorKind
	Message string
	Context map[string]string
}

// Reporter receives every failure exactly once. Where it goes (log, toast,
// metrics) is up to the implementation.
type Reporter interface {
	Report(Report)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Report)

func (f ReporterFunc) Report(r Report) { f(r) }

// KindOf classifies store errors.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, locationstore.ErrNotFound):
		return KindNotFound
	case errors.Is(err, locationstore.ErrDuplicateName):
		return KindDuplicateName
	case errors.Is(err, locationstore.ErrInvalidData):
		return KindInvalidData
	default:
		return KindUnknown
	}
}

// NewReport builds a Report for err with the given key/value context pairs.
func NewReport(err error, kv ...string) Report {
	r := Report{Kind: KindOf(err), Message: err.Error()}
	if len(kv) > 0 {
		r.Context = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			r.Context[kv[i]] = kv[i+1]
		}
	}
	return r
}
