package model

// Status is the lifecycle state of a harbour dues form.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusNew      Status = "NEW"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusInvoiced Status = "INVOICED"
	StatusPaid     Status = "PAID"
)

var statusTransitions = map[Status][]Status{
	StatusDraft:    {StatusNew},
	StatusNew:      {StatusApproved, StatusRejected, StatusInvoiced},
	StatusApproved: {StatusInvoiced},
	StatusRejected: {StatusDraft},
	StatusInvoiced: {StatusPaid},
	StatusPaid:     nil,
}

func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

func (s Status) CanTransition(to Status) bool {
	for _, next := range statusTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsInvoiced reports whether the form has been handed to invoicing.
func (s Status) IsInvoiced() bool {
	return s == StatusInvoiced || s == StatusPaid
}
