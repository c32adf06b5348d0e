package domain

// EventCounts are the nominee statistics derived for an event. They are never stored.
type EventCounts struct {
	TotalNominees int `json:"total_nominees"`
	AcceptedCount int `json:"accepted_count"`
	RejectedCount int `json:"rejected_count"`
	PendingCount  int `json:"pending_count"`
	AttendedCount int `json:"attended_count"`
}

// Aggregate counts nominees by status. Each nominee lands in exactly one count.
func Aggregate(nominees []*Nominee) EventCounts {
	statuses := make(map[NomineeStatus]int, 4)
	for _, n := range nominees {
		statuses[n.Status]++
	}
	return CountsFromStatuses(statuses)
}

// CountsFromStatuses builds EventCounts from per-status totals.
func CountsFromStatuses(statuses map[NomineeStatus]int) EventCounts {
	var c EventCounts
	for status, n := range statuses {
		c.TotalNominees += n
		switch status {
		case StatusPending:
			c.PendingCount += n
		case StatusAccepted:
			c.AcceptedCount += n
		case StatusRejected:
			c.RejectedCount += n
		case StatusAttended:
			c.AttendedCount += n
		}
	}
	return c
}

// Consistent reports whether accepted + rejected + pending + attended equals the total.
func (c EventCounts) Consistent() bool {
	return c.AcceptedCount+c.RejectedCount+c.PendingCount+c.AttendedCount == c.TotalNominees
}
