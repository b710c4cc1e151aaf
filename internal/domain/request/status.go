package request

import (
	"database/sql/driver"
	"fmt"
)

// Status is the lifecycle state of a document request. The set is closed:
// values outside it are rejected when parsed, scanned or written.
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaymentExpired Status = "payment_expired"
	StatusPaid           Status = "paid"
	StatusProcessing     Status = "processing"
	StatusReadyForClaim  Status = "ready_for_claim"
	StatusClaimed        Status = "claimed"
	StatusReleased       Status = "released"
	StatusCancelled      Status = "cancelled"
	StatusRejected       Status = "rejected"
)

var labels = map[Status]string{
	StatusPendingPayment: "Pending Payment",
	StatusPaymentExpired: "Payment Expired",
	StatusPaid:           "Paid",
	StatusProcessing:     "Processing",
	StatusReadyForClaim:  "Ready for Claim",
	StatusClaimed:        "Claimed",
	StatusReleased:       "Released",
	StatusCancelled:      "Cancelled",
	StatusRejected:       "Rejected",
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		StatusPendingPayment,
		StatusPaymentExpired,
		StatusPaid,
		StatusProcessing,
		StatusReadyForClaim,
		StatusClaimed,
		StatusReleased,
		StatusCancelled,
		StatusRejected,
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown request status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := labels[s]
	return ok
}

func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// IsFinal reports whether s has no outgoing transitions by classification.
func (s Status) IsFinal() bool {
	switch s {
	case StatusReleased, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

func (s Status) IsActive() bool { return s.Valid() && !s.IsFinal() }

func (s *Status) Scan(v any) error {
	var raw string
	switch t := v.(type) {
	case string:
		raw = t
	case []byte:
		raw = string(t)
	default:
		return fmt.Errorf("cannot scan %T into request status", v)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown request status %q", string(s))
	}
	return string(s), nil
}
